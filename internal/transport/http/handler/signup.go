package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/web3ix-api/internal/application/verification"
	"go.uber.org/zap"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyCodeRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Code     codeField `json:"code"`
}

// codeField accepts the code as a JSON string or number.
type codeField string

func (c *codeField) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = codeField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("code must be a string or number: %w", err)
	}
	*c = codeField(n.String())
	return nil
}

// SignupHandler serves the email verification flow.
type SignupHandler struct {
	svc verification.Service
	log *zap.Logger
}

func NewSignupHandler(svc verification.Service, log *zap.Logger) *SignupHandler {
	return &SignupHandler{svc: svc, log: log}
}

func (h *SignupHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.RequestCode(r.Context(), req.Email, req.Password); err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: verification.MsgCodeSent})
}

func (h *SignupHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.svc.VerifyCode(r.Context(), req.Email, req.Password, string(req.Code))
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuthEnvelope(sess))
}
