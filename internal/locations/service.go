package locations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ewait/internal/analytics"
	"ewait/internal/queues"
	"ewait/internal/shared/constants"
	"ewait/internal/shared/utils/validation"
	"ewait/pkg/cache"
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	ListLocations(ctx context.Context, ownerID uuid.UUID) ([]LocationResponse, error)
	CreateLocation(ctx context.Context, ownerID uuid.UUID, req CreateLocationRequest) (*LocationResponse, error)
}

type service struct {
	repo         Repository
	queueRepo    queues.Repository
	tracker      analytics.Tracker
	cacheService cache.Service
}

func NewService(repo Repository, queueRepo queues.Repository, tracker analytics.Tracker) Service {
	return &service{repo: repo, queueRepo: queueRepo, tracker: tracker}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// ListLocations caches the owner's locations and queues. Waiting counts change
// with every join and call-next, so they are always read from the database.
func (s *service) ListLocations(ctx context.Context, ownerID uuid.UUID) ([]LocationResponse, error) {
	locations, err := s.ownerLocations(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var queueIDs []uuid.UUID
	for _, loc := range locations {
		for _, q := range loc.Queues {
			queueIDs = append(queueIDs, q.ID)
		}
	}
	counts, err := s.queueRepo.WaitingCounts(ctx, queueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count waiting entries: %w", err)
	}

	result := make([]LocationResponse, 0, len(locations))
	for _, loc := range locations {
		result = append(result, toLocationResponse(loc, counts))
	}
	return result, nil
}

func (s *service) ownerLocations(ctx context.Context, ownerID uuid.UUID) ([]Location, error) {
	load := func() ([]Location, error) {
		locations, err := s.repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list locations: %w", err)
		}
		return locations, nil
	}

	if s.cacheService == nil {
		return load()
	}

	var locations []Location
	err := s.cacheService.GetOrSet(ctx, constants.BuildLocationsByOwnerKey(ownerID.String()), constants.TTL_LOCATIONS_BY_OWNER,
		func() (interface{}, error) {
			return load()
		}, &locations)
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (s *service) CreateLocation(ctx context.Context, ownerID uuid.UUID, req CreateLocationRequest) (*LocationResponse, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	location := &Location{
		Name:    strings.TrimSpace(req.Name),
		Address: req.Address,
		Phone:   req.Phone,
		OwnerID: ownerID,
	}
	if req.CreateDefaultQueue == nil || *req.CreateDefaultQueue {
		location.Queues = []queues.Queue{DefaultQueue()}
	}

	if err := s.repo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	if s.cacheService != nil {
		if err := s.cacheService.Delete(ctx, constants.BuildLocationsByOwnerKey(ownerID.String())); err != nil {
			slog.WarnContext(ctx, "locations cache invalidation failed", slog.String("error", err.Error()))
		}
	}
	if s.tracker != nil {
		s.tracker.Track(ctx, analytics.EventLocationCreate, analytics.Refs{LocationID: &location.ID, UserID: &ownerID})
	}

	resp := toLocationResponse(*location, nil)
	return &resp, nil
}
