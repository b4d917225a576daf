package verification

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	codeMin   = 100000
	codeRange = 900000 // codes are uniform over [100000, 999999]
)

// CodeGenerator produces 6-digit one-time codes and their expiry.
type CodeGenerator struct {
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
}

func NewCodeGenerator(ttl time.Duration) *CodeGenerator {
	return &CodeGenerator{ttl: ttl, now: time.Now, random: rand.Reader}
}

// TTL is how long a generated code stays valid.
func (g *CodeGenerator) TTL() time.Duration { return g.ttl }

func (g *CodeGenerator) Generate() (string, time.Time, error) {
	n, err := rand.Int(g.random, big.NewInt(codeRange))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate verification code: %w", err)
	}
	// Expiry is stored at second resolution; truncate so callers see the stored value.
	return fmt.Sprintf("%06d", codeMin+n.Int64()), g.now().Add(g.ttl).Truncate(time.Second), nil
}
