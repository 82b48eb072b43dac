package calculator

//go:generate mockgen -source=cache.go -destination=../mocks/mock_store.go -package=mocks

import (
	"context"
	"strconv"
	"strings"

	"github.com/jellydator/ttlcache/v3"
)

// Store keeps computed results for the lifetime of the process.
// A miss is reported through the bool, not as an error.
type Store interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Set(ctx context.Context, key string, res Result) error
}

// MemoryStore is an in-process Store backed by ttlcache. Entries never
// expire; a positive capacity turns on least-recently-used eviction.
type MemoryStore struct {
	cache *ttlcache.Cache[string, Result]
}

func NewMemoryStore(capacity uint64) *MemoryStore {
	opts := []ttlcache.Option[string, Result]{
		ttlcache.WithTTL[string, Result](ttlcache.NoTTL),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, Result](capacity))
	}

	return &MemoryStore{cache: ttlcache.New(opts...)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Result, bool, error) {
	item := s.cache.Get(key)
	if item == nil {
		return Result{}, false, nil
	}
	return item.Value(), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, res Result) error {
	s.cache.Set(key, res, ttlcache.DefaultTTL)
	return nil
}

// Len returns the number of cached results.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

// Stats exposes the underlying cache counters.
func (s *MemoryStore) Stats() ttlcache.Metrics {
	return s.cache.Metrics()
}

// cacheKey renders (operation, operands) as e.g. add(35E-1,42E-1,null).
// Operands are written as coefficient and exponent so that 1.0 and 1.00
// stay distinct: divide rounds at the dividend's scale.
func cacheKey(op Operation, operands Operands) string {
	var b strings.Builder
	b.WriteString(op.String())
	b.WriteByte('(')
	for i, o := range operands {
		if i > 0 {
			b.WriteByte(',')
		}
		if !o.Valid {
			b.WriteString("null")
			continue
		}
		b.WriteString(o.Decimal.Coefficient().String())
		b.WriteByte('E')
		b.WriteString(strconv.FormatInt(int64(o.Decimal.Exponent()), 10))
	}
	b.WriteByte(')')
	return b.String()
}
