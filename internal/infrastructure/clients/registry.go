package clients

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisRegistry is the identity registry: a Redis set of verified accounts.
type RedisRegistry struct {
	rdb *redis.Client
	key string
}

func NewRedisRegistry(rdb *redis.Client, keyPrefix string) *RedisRegistry {
	return &RedisRegistry{
		rdb: rdb,
		key: keyPrefix + "verified",
	}
}

func (r *RedisRegistry) IsVerified(ctx context.Context, account string) (bool, error) {
	ok, err := r.rdb.SIsMember(ctx, r.key, account).Result()
	if err != nil {
		return false, fmt.Errorf("check verification of %s: %w", account, err)
	}
	return ok, nil
}

func (r *RedisRegistry) Verify(ctx context.Context, account string) error {
	return r.VerifyBatch(ctx, []string{account})
}

func (r *RedisRegistry) VerifyBatch(ctx context.Context, accounts []string) error {
	members := make([]any, 0, len(accounts))
	for _, a := range accounts {
		if a != "" {
			members = append(members, a)
		}
	}
	if len(members) == 0 {
		return nil
	}

	if err := r.rdb.SAdd(ctx, r.key, members...).Err(); err != nil {
		return fmt.Errorf("verify accounts: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Unverify(ctx context.Context, account string) error {
	if err := r.rdb.SRem(ctx, r.key, account).Err(); err != nil {
		return fmt.Errorf("unverify %s: %w", account, err)
	}
	return nil
}
