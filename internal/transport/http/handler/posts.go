package handler

import (
	"net/http"

	"github.com/web3ix-api/internal/application/post"
	"go.uber.org/zap"
)

// PostHandler serves the content listings.
type PostHandler struct {
	svc post.Service
	log *zap.Logger
}

func NewPostHandler(svc post.Service, log *zap.Logger) *PostHandler {
	return &PostHandler{svc: svc, log: log}
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context())
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Videos(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListVideos(r.Context())
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}
