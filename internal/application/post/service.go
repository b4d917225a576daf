package post

import (
	"context"

	"github.com/web3ix-api/internal/domain"
)

type Service interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	ListVideos(ctx context.Context) ([]domain.Post, error)
}

type postStore interface {
	List(ctx context.Context) ([]domain.Post, error)
	ListVideos(ctx context.Context) ([]domain.Post, error)
}

type service struct {
	repo postStore
}

func NewService(repo postStore) Service {
	return &service{repo: repo}
}

func (s *service) ListPosts(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.Fail(domain.ErrStorage, err.Error(), err)
	}
	return posts, nil
}

func (s *service) ListVideos(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.repo.ListVideos(ctx)
	if err != nil {
		return nil, domain.Fail(domain.ErrStorage, err.Error(), err)
	}
	return posts, nil
}
