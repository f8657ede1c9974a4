package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix      = "studio-booking:lock:"
	redisReleaseTimeout = 2 * time.Second
)

// releaseScript удаляет ключ, только если он все еще принадлежит владельцу токена
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Redis распределенная блокировка на SET NX PX
type Redis struct {
	client        redis.UniversalClient
	ttl           time.Duration
	retryInterval time.Duration
	logger        Logger
}

// NewRedis создает locker поверх Redis.
// ttl должен быть больше максимального времени check-then-insert.
func NewRedis(client redis.UniversalClient, ttl, retryInterval time.Duration, logger Logger) *Redis {
	return &Redis{
		client:        client,
		ttl:           ttl,
		retryInterval: retryInterval,
		logger:        logger,
	}
}

// WithLock берет все ключи, выполняет fn и отпускает ключи
func (r *Redis) WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	keys = normalize(keys)
	if len(keys) == 0 {
		return ErrNoKeys
	}

	token := uuid.NewString()
	held := make([]string, 0, len(keys))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := r.release(held[i], token); err != nil {
				r.logger.Error("Locks: %v", err)
			}
		}
	}()

	for _, key := range keys {
		if err := r.acquire(ctx, key, token); err != nil {
			return err
		}
		held = append(held, key)
	}

	return fn(ctx)
}

func (r *Redis) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(r.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, redisKeyPrefix+key, token, r.ttl).Result()
		if err != nil {
			return fmt.Errorf("%w: key=%s: %v", ErrAcquire, key, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: key=%s: %v", ErrAcquire, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

// release выполняется на отдельном контексте, чтобы снять ключ даже после отмены запроса
func (r *Redis) release(key, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisReleaseTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, r.client, []string{redisKeyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("%w: key=%s: %v", ErrRelease, key, err)
	}
	return nil
}
