package handler

import (
	"net/http"

	"github.com/web3ix-api/internal/application/wallet"
	"go.uber.org/zap"
)

type walletSignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	PublicKey string `json:"publicKey"`
}

// WalletHandler serves wallet-bound sign-up.
type WalletHandler struct {
	svc wallet.Service
	log *zap.Logger
}

func NewWalletHandler(svc wallet.Service, log *zap.Logger) *WalletHandler {
	return &WalletHandler{svc: svc, log: log}
}

func (h *WalletHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req walletSignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.svc.Provision(r.Context(), req.Email, req.Password, req.PublicKey)
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuthEnvelope(sess))
}
