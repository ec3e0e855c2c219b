package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "shiftgrid:draft:"
	maxRetries = 5
)

// ErrConcurrentEdit is returned when the same draft kept changing under a
// Save or Undo for maxRetries attempts.
var ErrConcurrentEdit = errors.New("draft changed concurrently")

// RedisStore keeps drafts in Redis. The current draft is a JSON string at
// shiftgrid:draft:{location}:{session}; earlier versions are a list at the
// same key with a :history suffix, newest first. Both expire after ttl of
// inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	limit  int
	now    func() time.Time
}

// NewRedisStore builds a store on an existing client. A zero ttl keeps
// drafts forever.
func NewRedisStore(client *redis.Client, ttl time.Duration, historyLimit int) *RedisStore {
	if historyLimit < 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &RedisStore{client: client, ttl: ttl, limit: historyLimit, now: time.Now}
}

func (s *RedisStore) currentKey(key domain.DraftKey) string {
	return keyPrefix + key.String()
}

func (s *RedisStore) historyKey(key domain.DraftKey) string {
	return keyPrefix + key.String() + ":history"
}

func (s *RedisStore) Load(ctx context.Context, key domain.DraftKey) (domain.Draft, error) {
	if err := key.Validate(); err != nil {
		return domain.Draft{}, err
	}

	var (
		raw   string
		depth int64
	)
	cur := s.currentKey(key)
	hist := s.historyKey(key)
	cmds, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Get(ctx, cur)
		p.LLen(ctx, hist)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.Draft{}, fmt.Errorf("load draft: %w", err)
	}
	raw, err = cmds[0].(*redis.StringCmd).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Draft{}, nil
	}
	if err != nil {
		return domain.Draft{}, fmt.Errorf("load draft: %w", err)
	}
	depth = cmds[1].(*redis.IntCmd).Val()

	d, err := decodeDraft(raw)
	if err != nil {
		return domain.Draft{}, err
	}
	d.UndoDepth = int(depth)
	return d, nil
}

func (s *RedisStore) Save(ctx context.Context, key domain.DraftKey, blocks []domain.AssignmentBlock, expectedVersion int) (domain.Draft, error) {
	if err := key.Validate(); err != nil {
		return domain.Draft{}, err
	}
	cur := s.currentKey(key)
	hist := s.historyKey(key)

	var saved domain.Draft
	txf := func(tx *redis.Tx) error {
		prevRaw, err := tx.Get(ctx, cur).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		prev := domain.Draft{}
		if prevRaw != "" {
			if prev, err = decodeDraft(prevRaw); err != nil {
				return err
			}
		} else if prevRaw, err = encodeDraft(prev); err != nil {
			return err
		}
		if expectedVersion > 0 && expectedVersion != prev.Version {
			return fmt.Errorf("%w: expected %d, current %d", domain.ErrVersionMismatch, expectedVersion, prev.Version)
		}

		next := domain.Draft{
			Blocks:    blocks,
			Version:   prev.Version + 1,
			UpdatedAt: s.now().UTC(),
		}
		nextRaw, err := encodeDraft(next)
		if err != nil {
			return err
		}

		var depth *redis.IntCmd
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, cur, nextRaw, s.ttl)
			if s.limit > 0 {
				p.LPush(ctx, hist, prevRaw)
				p.LTrim(ctx, hist, 0, int64(s.limit-1))
				if s.ttl > 0 {
					p.Expire(ctx, hist, s.ttl)
				}
			}
			depth = p.LLen(ctx, hist)
			return nil
		})
		if err != nil {
			return err
		}
		next.UndoDepth = int(depth.Val())
		saved = next
		return nil
	}

	if err := s.watch(ctx, txf, cur, hist); err != nil {
		return domain.Draft{}, fmt.Errorf("save draft: %w", err)
	}
	return saved, nil
}

func (s *RedisStore) Undo(ctx context.Context, key domain.DraftKey) (domain.Draft, error) {
	if err := key.Validate(); err != nil {
		return domain.Draft{}, err
	}
	cur := s.currentKey(key)
	hist := s.historyKey(key)

	var restored domain.Draft
	txf := func(tx *redis.Tx) error {
		prevRaw, err := tx.LIndex(ctx, hist, 0).Result()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNothingToUndo
		}
		if err != nil {
			return err
		}
		prev, err := decodeDraft(prevRaw)
		if err != nil {
			return err
		}
		current, err := s.currentVersion(ctx, tx, cur)
		if err != nil {
			return err
		}

		next := domain.Draft{
			Blocks:    prev.Blocks,
			Version:   current + 1,
			UpdatedAt: s.now().UTC(),
		}
		nextRaw, err := encodeDraft(next)
		if err != nil {
			return err
		}

		var depth *redis.IntCmd
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.LPop(ctx, hist)
			p.Set(ctx, cur, nextRaw, s.ttl)
			depth = p.LLen(ctx, hist)
			return nil
		})
		if err != nil {
			return err
		}
		next.UndoDepth = int(depth.Val())
		restored = next
		return nil
	}

	if err := s.watch(ctx, txf, cur, hist); err != nil {
		if errors.Is(err, domain.ErrNothingToUndo) {
			return domain.Draft{}, err
		}
		return domain.Draft{}, fmt.Errorf("undo draft: %w", err)
	}
	return restored, nil
}

func (s *RedisStore) Clear(ctx context.Context, key domain.DraftKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	cur := s.currentKey(key)
	hist := s.historyKey(key)

	txf := func(tx *redis.Tx) error {
		current, err := s.currentVersion(ctx, tx, cur)
		if err != nil {
			return err
		}
		emptyRaw, err := encodeDraft(domain.Draft{Version: current + 1, UpdatedAt: s.now().UTC()})
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, hist)
			if current > 0 {
				p.Set(ctx, cur, emptyRaw, s.ttl)
			}
			return nil
		})
		return err
	}

	if err := s.watch(ctx, txf, cur, hist); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// currentVersion reads the stored version, 0 when the draft does not exist.
func (s *RedisStore) currentVersion(ctx context.Context, tx *redis.Tx, cur string) (int, error) {
	raw, err := tx.Get(ctx, cur).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	d, err := decodeDraft(raw)
	if err != nil {
		return 0, err
	}
	return d.Version, nil
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for range maxRetries {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConcurrentEdit
}

func encodeDraft(d domain.Draft) (string, error) {
	d.UndoDepth = 0
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal draft: %w", err)
	}
	return string(data), nil
}

func decodeDraft(raw string) (domain.Draft, error) {
	var d domain.Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return domain.Draft{}, fmt.Errorf("unmarshal draft: %w", err)
	}
	return d, nil
}
