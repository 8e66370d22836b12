package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
)

// CachedMappingStore decorates a MappingStore with a Redis read-through
// cache for id resolution. Only positive lookups are cached, so a mapping
// recorded by another process is never hidden by a stale miss. Redis
// failures degrade to the underlying store.
type CachedMappingStore struct {
	usecase.MappingStore
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedMappingStore creates a new CachedMappingStore.
func NewCachedMappingStore(store usecase.MappingStore, client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) *CachedMappingStore {
	return &CachedMappingStore{
		MappingStore: store,
		client:       client,
		prefix:       "mapping:",
		ttl:          ttl,
		logger:       logger.With().Str("component", "mapping_cache").Logger(),
	}
}

func (s *CachedMappingStore) localKey(localType domain.EntityType, localID int64) string {
	return fmt.Sprintf("%sl:%s:%d", s.prefix, localType, localID)
}

func (s *CachedMappingStore) externalKey(externalType string, externalID int64) string {
	return fmt.Sprintf("%se:%s:%d", s.prefix, externalType, externalID)
}

// Put records the mapping and caches both directions.
func (s *CachedMappingStore) Put(ctx context.Context, localType domain.EntityType, localID int64, externalType string, externalID int64) (*domain.MappingRecord, error) {
	rec, err := s.MappingStore.Put(ctx, localType, localID, externalType, externalID)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, rec)
	return rec, nil
}

// ResolveExternal returns the ERP id of a local entity.
func (s *CachedMappingStore) ResolveExternal(ctx context.Context, localType domain.EntityType, localID int64) (int64, bool, error) {
	key := s.localKey(localType, localID)
	if id, ok := s.lookup(ctx, key); ok {
		return id, true, nil
	}

	id, ok, err := s.MappingStore.ResolveExternal(ctx, localType, localID)
	if err != nil || !ok {
		return id, ok, err
	}
	s.store(ctx, key, id)
	return id, true, nil
}

// ResolveLocal returns the local id of an ERP record.
func (s *CachedMappingStore) ResolveLocal(ctx context.Context, externalType string, externalID int64) (int64, bool, error) {
	key := s.externalKey(externalType, externalID)
	if id, ok := s.lookup(ctx, key); ok {
		return id, true, nil
	}

	id, ok, err := s.MappingStore.ResolveLocal(ctx, externalType, externalID)
	if err != nil || !ok {
		return id, ok, err
	}
	s.store(ctx, key, id)
	return id, true, nil
}

// Delete removes the mapping and evicts both directions.
func (s *CachedMappingStore) Delete(ctx context.Context, localType domain.EntityType, localID int64) error {
	keys := []string{s.localKey(localType, localID)}

	rec, err := s.MappingStore.GetByLocal(ctx, localType, localID)
	switch {
	case err == nil:
		keys = append(keys, s.externalKey(rec.ExternalType, rec.ExternalID))
	case !errors.Is(err, domain.ErrMappingNotFound):
		return err
	}

	if err := s.MappingStore.Delete(ctx, localType, localID); err != nil {
		return err
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to evict mapping")
	}
	return nil
}

func (s *CachedMappingStore) remember(ctx context.Context, rec *domain.MappingRecord) {
	s.store(ctx, s.localKey(rec.LocalType, rec.LocalID), rec.ExternalID)
	s.store(ctx, s.externalKey(rec.ExternalType, rec.ExternalID), rec.LocalID)
}

func (s *CachedMappingStore) lookup(ctx context.Context, key string) (int64, bool) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("mapping cache read failed")
		}
		return 0, false
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		s.logger.Warn().Str("key", key).Str("value", val).Msg("discarding malformed cached mapping")
		return 0, false
	}
	return id, true
}

func (s *CachedMappingStore) store(ctx context.Context, key string, id int64) {
	if err := s.client.Set(ctx, key, id, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("mapping cache write failed")
	}
}
