// Package notify queues patient notifications until they fall due.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/domain"
)

const keyPrefix = "lipidcare:notifications:"

// RedisQueue keeps one sorted set per patient scored by due time in unix
// seconds. Members are the JSON-encoded notifications.
type RedisQueue struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisQueue(client *redis.Client, logger *zap.Logger) *RedisQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisQueue{client: client, logger: logger}
}

func key(patientID string) string {
	return keyPrefix + patientID
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Schedule adds the notifications, assigning IDs to those without one.
func (q *RedisQueue) Schedule(ctx context.Context, ns []domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	pipe := q.client.TxPipeline()
	for _, n := range ns {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encode notification: %w", err)
		}
		pipe.ZAdd(ctx, key(n.PatientID), &redis.Z{Score: float64(n.Due.Unix()), Member: payload})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("schedule notifications: %w", err)
	}
	return nil
}

// Pending removes and returns the patient's notifications due at or before
// now, earliest first. A notification is handed to at most one caller: only
// members this call managed to remove are returned.
func (q *RedisQueue) Pending(ctx context.Context, patientID string, now time.Time) ([]domain.Notification, error) {
	k := key(patientID)
	members, err := q.client.ZRangeByScore(ctx, k, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	if len(members) == 0 {
		return []domain.Notification{}, nil
	}

	pipe := q.client.Pipeline()
	removed := make([]*redis.IntCmd, len(members))
	for i, m := range members {
		removed[i] = pipe.ZRem(ctx, k, m)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("claim notifications: %w", err)
	}

	out := make([]domain.Notification, 0, len(members))
	for i, m := range members {
		if removed[i].Val() == 0 {
			continue
		}
		var n domain.Notification
		if err := json.Unmarshal([]byte(m), &n); err != nil {
			q.logger.Warn("dropping undecodable notification", zap.String("patient_id", patientID), zap.Error(err))
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

var _ domain.NotificationQueue = (*RedisQueue)(nil)
