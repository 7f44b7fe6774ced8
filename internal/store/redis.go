package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each item in a hash and indexes ids per owner in a sorted
// set scored by creation time, which gives Query a stable order.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "pantry"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *RedisStore) itemKey(id string) string {
	return fmt.Sprintf("%s:item:%s", s.prefix, id)
}

func (s *RedisStore) ownerKey(ownerID string) string {
	return fmt.Sprintf("%s:owner:%s", s.prefix, ownerID)
}

func (s *RedisStore) Query(ctx context.Context, ownerID string) ([]models.PantryItem, error) {
	if ownerID == "" {
		return nil, ErrOwnerMissing
	}

	ids, err := s.rdb.ZRange(ctx, s.ownerKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("query pantry items: %w", err)
	}
	if len(ids) == 0 {
		return []models.PantryItem{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.itemKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query pantry items: %w", err)
	}

	items := make([]models.PantryItem, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		// The index can outlive a hash removed out of band.
		if len(fields) == 0 || fields["userId"] != ownerID {
			continue
		}
		items = append(items, decodeRedisItem(ids[i], fields))
	}
	return items, nil
}

func (s *RedisStore) Create(ctx context.Context, fields Fields) (string, error) {
	if fields.UserID == "" {
		return "", ErrOwnerMissing
	}

	id := uuid.NewString()
	now := s.now().UTC()
	values := encodeRedisFields(fields)
	values["userId"] = fields.UserID
	values["createdAt"] = now.Format(time.RFC3339Nano)
	values["updatedAt"] = now.Format(time.RFC3339Nano)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.itemKey(id), values)
		pipe.ZAdd(ctx, s.ownerKey(fields.UserID), redis.Z{Score: float64(now.UnixNano()), Member: id})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create pantry item: %w", err)
	}
	return id, nil
}

func (s *RedisStore) Update(ctx context.Context, ownerID, id string, fields Fields) error {
	key := s.itemKey(id)
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		owner, err := tx.HGet(ctx, key, "userId").Result()
		if errors.Is(err, redis.Nil) || (err == nil && owner != ownerID) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		values := encodeRedisFields(fields)
		values["updatedAt"] = s.now().UTC().Format(time.RFC3339Nano)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, values)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update pantry item: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, ownerID, id string) error {
	key := s.itemKey(id)
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		owner, err := tx.HGet(ctx, key, "userId").Result()
		if errors.Is(err, redis.Nil) || (err == nil && owner != ownerID) {
			return nil
		}
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, s.ownerKey(ownerID), id)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("delete pantry item: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func encodeRedisFields(fields Fields) map[string]interface{} {
	expiration := ""
	if fields.ExpirationDate != nil {
		expiration = *fields.ExpirationDate
	}
	return map[string]interface{}{
		"name":           fields.Name,
		"quantity":       strconv.Itoa(fields.Quantity),
		"expirationDate": expiration,
		"category":       fields.Category,
	}
}

func decodeRedisItem(id string, fields map[string]string) models.PantryItem {
	item := models.PantryItem{
		ID:       id,
		UserID:   fields["userId"],
		Name:     fields["name"],
		Category: fields["category"],
	}
	item.Quantity, _ = strconv.Atoi(fields["quantity"])
	if d := fields["expirationDate"]; d != "" {
		item.ExpirationDate = &d
	}
	item.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["createdAt"])
	item.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updatedAt"])
	return item
}
