package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

// ErrResultNotFound is returned when no output exists for a document.
var ErrResultNotFound = errors.New("result not found")

// RedisResultRepository stores run outputs as JSON values with a TTL.
type RedisResultRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisResultRepository creates a repository on an existing client. A
// zero ttl keeps results for 24 hours.
func NewRedisResultRepository(client *redis.Client, ttl time.Duration) *RedisResultRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisResultRepository{client: client, ttl: ttl}
}

func resultKey(tenantID, docID string) string {
	if tenantID == "" {
		tenantID = "default"
	}
	return fmt.Sprintf("result:%s:%s", tenantID, docID)
}

// Save implements ResultRepository.Save.
func (r *RedisResultRepository) Save(ctx context.Context, tenantID, docID string, out *models.Output) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if err := r.client.Set(ctx, resultKey(tenantID, docID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save output: %w", err)
	}
	return nil
}

// Get implements ResultRepository.Get.
func (r *RedisResultRepository) Get(ctx context.Context, tenantID, docID string) (*models.Output, error) {
	data, err := r.client.Get(ctx, resultKey(tenantID, docID)).Bytes()
	if err == redis.Nil {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get output: %w", err)
	}

	var out models.Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal output: %w", err)
	}
	return &out, nil
}
