// Package redis stores blueprints in Redis as JSON values.
//
// Each record lives under "<prefix>record:<id>"; the set "<prefix>records"
// holds every ID so List does not need SCAN.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/villas/pkg/store"
)

// DefaultPrefix is used when Config.Prefix is empty.
const DefaultPrefix = "villas:"

// Config configures the Redis connection.
type Config struct {
	// URL is a redis:// URL; it takes precedence over Addr, Password and DB.
	URL      string
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store is a Redis-backed blueprint store.
type Store struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	s := NewStoreFromClient(client, cfg.Prefix)
	s.owned = true
	return s, nil
}

// NewStoreFromClient wraps an existing client. Close leaves the client open.
func NewStoreFromClient(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) recordKey(id string) string { return s.prefix + "record:" + id }
func (s *Store) indexKey() string          { return s.prefix + "records" }

func (s *Store) Save(ctx context.Context, r *store.Record) error {
	var existing *store.Record
	if r != nil && r.ID != "" {
		prev, err := s.Get(ctx, r.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		existing = prev
	}
	if err := store.Prepare(r, existing, time.Now()); err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(r.ID), data, 0)
		pipe.SAdd(ctx, s.indexKey(), r.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save record %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return decode(id, data)
}

func (s *Store) List(ctx context.Context) ([]*store.Record, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	out := make([]*store.Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Deleted between SMEMBERS and MGET
			continue
		}
		r, err := decode(ids[i], []byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	store.Sort(out)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.recordKey(id))
		pipe.SRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if del.Val() == 0 {
		return store.NotFound(id)
	}
	return nil
}

func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

func decode(id string, data []byte) (*store.Record, error) {
	var r store.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", id, err)
	}
	return &r, nil
}

var _ store.Store = (*Store)(nil)
