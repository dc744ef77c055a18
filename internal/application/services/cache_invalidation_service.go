package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/providers"
)

// CacheInvalidationService drops cached preference records when another
// instance reports a change
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	origin   string
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewCacheInvalidationService creates a new cache invalidation service.
// Events whose origin equals origin are skipped; the writer already
// invalidated its own cache.
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus, origin string) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		origin:   origin,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelPreferenceUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to preference updates: %w", err)
	}

	s.wg.Add(1)
	go s.processEvents(eventChan)
	log.Info().Str("origin", s.origin).Msg("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service and waits for the worker
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.PreferenceChangedEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.PreferenceChangedEvent) {
	if event.Origin != "" && event.Origin == s.origin {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Invalidate(ctx, event.UserID); err != nil {
		log.Warn().Err(err).Str("event_id", event.ID).Str("user_id", event.UserID).Msg("Failed to invalidate cached preferences")
		return
	}
	log.Debug().
		Str("event_id", event.ID).
		Str("user_id", event.UserID).
		Str("change", string(event.ChangeType)).
		Msg("Invalidated cached preferences")
}

// Invalidate drops the cached record of a single user
func (s *CacheInvalidationService) Invalidate(ctx context.Context, userID string) error {
	if err := s.cache.Delete(ctx, providers.PreferenceCacheKey(userID)); err != nil {
		return fmt.Errorf("failed to invalidate preferences cache for %s: %w", userID, err)
	}
	return nil
}
