package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/web3ix-api/internal/config"
	"github.com/web3ix-api/internal/domain"
	"go.uber.org/zap"
)

// Client talks to a GoTrue (Supabase Auth) server. It implements
// domain.IdentityProvider.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	timeout    time.Duration
	http       *http.Client
	log        *zap.Logger
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.SupabaseURL + "/auth/v1",
		anonKey:    cfg.SupabaseKey,
		serviceKey: cfg.SupabaseServiceRoleKey,
		timeout:    cfg.IdentityTimeout,
		http:       &http.Client{},
		log:        log,
	}
}

type credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// signUpResponse covers both shapes GoTrue returns: a bare user when email
// confirmation is required, or a session wrapping the user when autoconfirm
// is on.
type signUpResponse struct {
	domain.Account
	User *domain.Account `json:"user"`
}

// apiError covers the legacy OAuth-style and the current GoTrue error bodies.
type apiError struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var sess domain.Session
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.anonKey,
		credentials{Email: email, Password: password}, &sess)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Account, error) {
	var resp signUpResponse
	err := c.do(ctx, http.MethodPost, "/signup", c.anonKey,
		credentials{Email: email, Password: password, Data: metadata}, &resp)
	if err != nil {
		return nil, err
	}
	acct := &resp.Account
	if resp.User != nil {
		acct = resp.User
	}
	if acct.ID == "" {
		return nil, &domain.ProviderError{Status: http.StatusBadGateway, Message: "sign-up response carried no user id"}
	}
	return acct, nil
}

// ForceConfirm marks the account's email confirmed through the admin API.
func (c *Client) ForceConfirm(ctx context.Context, accountID string) error {
	body := map[string]bool{"email_confirm": true}
	return c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(accountID), c.serviceKey, body, nil)
}

func (c *Client) do(ctx context.Context, method, path, key string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		pe := parseError(resp.StatusCode, raw)
		c.log.Debug("identity provider rejected request",
			zap.String("method", method), zap.String("path", path),
			zap.Int("status", pe.Status), zap.String("code", pe.Code), zap.String("msg", pe.Message))
		return pe
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func parseError(status int, raw []byte) *domain.ProviderError {
	pe := &domain.ProviderError{Status: status}
	var body apiError
	if json.Unmarshal(raw, &body) == nil {
		pe.Code = firstNonEmpty(body.ErrorCode, body.Error)
		pe.Message = firstNonEmpty(body.Msg, body.ErrorDescription, body.Message, body.Error)
	}
	if pe.Message == "" {
		pe.Message = http.StatusText(status)
	}
	return pe
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
