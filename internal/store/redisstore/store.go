// Package redisstore keeps a collection in a Redis hash keyed by record id,
// with ids drawn from an INCR counter.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/shared"
)

const maxTxRetries = 8

// raiseSeq sets KEYS[1] to ARGV[1] unless it already holds a larger value.
var raiseSeq = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local want = tonumber(ARGV[1])
if want > cur then
  redis.call("SET", KEYS[1], want)
  return want
end
return cur
`)

// Store implements entity.Store on top of Redis.
type Store[T any, P any] struct {
	client  redis.UniversalClient
	desc    entity.Descriptor[T, P]
	records string
	seq     string
}

// New constructs a store using keys under prefix, e.g. "admindash:users:records".
func New[T any, P any](client redis.UniversalClient, prefix string, desc entity.Descriptor[T, P]) *Store[T, P] {
	base := fmt.Sprintf("%s:%s", prefix, desc.Kind)
	return &Store[T, P]{
		client:  client,
		desc:    desc,
		records: base + ":records",
		seq:     base + ":seq",
	}
}

// Seed writes items that are not present yet and raises the id counter so
// later creates never reuse a seeded id.
func (s *Store[T, P]) Seed(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, it := range items {
			raw, err := json.Marshal(it)
			if err != nil {
				return err
			}
			pipe.HSetNX(ctx, s.records, field(s.desc.ID(it)), raw)
		}
		return nil
	})
	if err != nil {
		return s.fail("seed", err)
	}
	if err := raiseSeq.Run(ctx, s.client, []string{s.seq}, s.desc.MaxID(items)).Err(); err != nil {
		return s.fail("seed", err)
	}
	return nil
}

// GetAll returns every record ordered by id, which is insertion order.
func (s *Store[T, P]) GetAll(ctx context.Context) ([]T, error) {
	raw, err := s.client.HGetAll(ctx, s.records).Result()
	if err != nil {
		return nil, s.fail("get all", err)
	}
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		rec, err := s.decode(v)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return s.desc.ID(out[i]) < s.desc.ID(out[j]) })
	return out, nil
}

// Get returns one record.
func (s *Store[T, P]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	v, err := s.client.HGet(ctx, s.records, field(id)).Result()
	if errors.Is(err, redis.Nil) {
		return zero, fmt.Errorf("redisstore: get %s %d: %w", s.desc.Kind, id, shared.ErrNotFound)
	}
	if err != nil {
		return zero, s.fail("get", err)
	}
	return s.decode(v)
}

// Create validates draft, allocates an id and stores the record.
func (s *Store[T, P]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	draft = s.desc.Prepare(draft)
	if err := s.desc.Validate(draft); err != nil {
		return zero, fmt.Errorf("redisstore: create %s: %w", s.desc.Kind, err)
	}
	id, err := s.client.Incr(ctx, s.seq).Result()
	if err != nil {
		return zero, s.fail("create", err)
	}
	rec := s.desc.SetID(draft, id)
	raw, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("redisstore: encode %s: %w", s.desc.Kind, err)
	}
	if err := s.client.HSet(ctx, s.records, field(id), raw).Err(); err != nil {
		return zero, s.fail("create", err)
	}
	return rec, nil
}

// Update merges patch inside an optimistic WATCH transaction, retrying when a
// concurrent writer touched the hash.
func (s *Store[T, P]) Update(ctx context.Context, id int64, patch P) (T, error) {
	var out T
	txf := func(tx *redis.Tx) error {
		v, err := tx.HGet(ctx, s.records, field(id)).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("redisstore: update %s %d: %w", s.desc.Kind, id, shared.ErrNotFound)
		}
		if err != nil {
			return err
		}
		current, err := s.decode(v)
		if err != nil {
			return err
		}
		merged := s.desc.SetID(s.desc.Apply(current, patch), id)
		if err := s.desc.Validate(merged); err != nil {
			return fmt.Errorf("redisstore: update %s %d: %w", s.desc.Kind, id, err)
		}
		raw, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.records, field(id), raw)
			return nil
		})
		if err == nil {
			out = merged
		}
		return err
	}
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, s.records)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrValidation) {
			return out, err
		}
		return out, s.fail("update", err)
	}
	return out, fmt.Errorf("redisstore: update %s %d: %w: too much contention", s.desc.Kind, id, shared.ErrStoreUnavailable)
}

// Delete removes id. HDEL on a missing field is a no-op.
func (s *Store[T, P]) Delete(ctx context.Context, id int64) error {
	if err := s.client.HDel(ctx, s.records, field(id)).Err(); err != nil {
		return s.fail("delete", err)
	}
	return nil
}

func (s *Store[T, P]) decode(v string) (T, error) {
	var rec T
	if err := json.Unmarshal([]byte(v), &rec); err != nil {
		return rec, fmt.Errorf("redisstore: decode %s: %w", s.desc.Kind, err)
	}
	return rec, nil
}

func (s *Store[T, P]) fail(op string, err error) error {
	err = shared.StoreError(err)
	if errors.Is(err, shared.ErrTimeout) || errors.Is(err, shared.ErrStoreUnavailable) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("redisstore: %s %s: %w", op, s.desc.Kind, err)
	}
	return fmt.Errorf("redisstore: %s %s: %w: %v", op, s.desc.Kind, shared.ErrStoreUnavailable, err)
}

func field(id int64) string {
	return strconv.FormatInt(id, 10)
}
