package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/api/middleware"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitRepository interface {
	CheckLoginRateLimit(ctx context.Context, username string) (bool, int, int, error)
}

type TokenRepository interface {
	StoreResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	// ConsumeResetToken resolves the token to a user and deletes it in one
	// round trip. A second consume of the same token fails.
	ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error)
}

type redisRepository struct {
	client *redis.Client
	cfg    *config.Config
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	redisURL := cfg.RedisConnect.GetDSN()
	slog.Info("Connecting to Redis", slog.String("url", fmt.Sprintf("redis://%s:<password>@%s", cfg.RedisConnect.Username, cfg.RedisConnect.Host)))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Error("Failed to parse Redis URL", slog.Any("error", err))
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DB = cfg.RedisConnect.DB

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("✅ Successfully connected to Redis")
	return client, nil
}

func NewRateLimitRepo(client *redis.Client, cfg *config.Config) RateLimitRepository {
	return &redisRepository{client: client, cfg: cfg}
}

func NewTokenRepo(client *redis.Client, cfg *config.Config) TokenRepository {
	return &redisRepository{client: client, cfg: cfg}
}

// Returns isAllowed, attempts left, seconds to wait, error
func (r *redisRepository) CheckLoginRateLimit(ctx context.Context, username string) (bool, int, int, error) {

	logger := middleware.LoggerFromContext(ctx)

	key := fmt.Sprintf("login_attempts:%s", username)

	now := time.Now().Unix()

	// only attempts inside the sliding window count
	windowStart := now - int64(r.cfg.RateConfig.WindowSize.Seconds())

	pipe := r.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, r.cfg.RateConfig.WindowSize)

	_, err := pipe.Exec(ctx)
	if err != nil {
		logger.Error("Redis pipeline execution failed for rate limit", slog.String("key", key), slog.Any("error", err))
		return false, 0, 0, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	attempts := count.Val()
	remaining := r.cfg.RateConfig.MaxAttempts - attempts

	if attempts >= r.cfg.RateConfig.MaxAttempts {

		oldestScoreCmd := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{
			Key: key, Start: 0, Stop: 0,
		})

		scores, err := oldestScoreCmd.Result()
		if err != nil || len(scores) == 0 {
			logger.Error("Failed to get oldest attempt time for rate limit", slog.String("key", key), slog.Any("error", err))
			return false, 0, int(r.cfg.RateConfig.WindowSize.Seconds()), fmt.Errorf("failed to get oldest attempt time: %w", err)
		}

		oldestTimestamp := int64(scores[0].Score)

		retryAfter := max((oldestTimestamp+int64(r.cfg.RateConfig.WindowSize.Seconds()))-now, 0)

		logger.Warn("Rate limit exceeded for user", slog.String("username", username), slog.Int64("attempts", attempts))
		return false, 0, int(retryAfter), nil
	}

	logger.Debug("Rate limit check passed", slog.String("username", username), slog.Int64("attempts", attempts), slog.Int64("remaining", remaining))
	return true, int(remaining), 0, nil
}

func resetTokenKey(token string) string {
	return "reset_token:" + token
}

func (r *redisRepository) StoreResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {

	if err := r.client.Set(ctx, resetTokenKey(token), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	return nil
}

func (r *redisRepository) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {

	val, err := r.client.GetDel(ctx, resetTokenKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return uuid.Nil, redis.Nil
		}
		return uuid.Nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse reset token payload: %w", err)
	}

	return userID, nil
}
