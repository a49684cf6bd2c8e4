// Package catalog serves the bookable service list. Entries change
// rarely, so reads go through a short-lived in-process cache. Slot
// availability is never cached.
package catalog

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/smilecare/booking-api/internal/model"
	"github.com/smilecare/booking-api/internal/repository"
	apperrors "github.com/smilecare/booking-api/pkg/errors"
)

const (
	listKey         = "services:active"
	defaultTTL      = 5 * time.Minute
	cleanupInterval = 10 * time.Minute
)

type Service struct {
	repo  repository.ServiceRepository
	cache *gocache.Cache
}

func NewService(repo repository.ServiceRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// List returns the active services, cached.
func (s *Service) List(ctx context.Context) ([]*model.Service, error) {
	if cached, ok := s.cache.Get(listKey); ok {
		return cached.([]*model.Service), nil
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	active := make([]*model.Service, 0, len(all))
	for _, svc := range all {
		if svc.IsActive {
			active = append(active, svc)
		}
	}

	s.cache.Set(listKey, active, gocache.DefaultExpiration)
	return active, nil
}

// Get returns one active service, cached per id.
func (s *Service) Get(ctx context.Context, id int64) (*model.Service, error) {
	key := fmt.Sprintf("service:%d", id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.Service), nil
	}

	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if svc == nil || !svc.IsActive {
		return nil, apperrors.NotFound("service", nil)
	}

	s.cache.Set(key, svc, gocache.DefaultExpiration)
	return svc, nil
}

// Invalidate drops all cached entries, for use after catalog edits.
func (s *Service) Invalidate() {
	s.cache.Flush()
}
