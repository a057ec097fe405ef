package auth

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Logout works by denylisting the raw token in Redis until its natural
// expiry. When REDIS_URL is not configured the denylist is disabled and
// logout degrades to a client-side discard.

var revocations *redis.Client

const revokedKeyPrefix = "revoked:"

func InitRevocationStore(redisURL string) error {
	if redisURL == "" {
		log.Println("REDIS_URL not set, token revocation disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	revocations = client
	return nil
}

func RevokeToken(ctx context.Context, token string, expiry time.Time) error {
	if revocations == nil {
		return nil
	}

	ttl := time.Until(expiry)
	if ttl <= 0 {
		return nil
	}

	return revocations.Set(ctx, revokedKeyPrefix+token, 1, ttl).Err()
}

func IsTokenRevoked(ctx context.Context, token string) bool {
	if revocations == nil {
		return false
	}

	exists, err := revocations.Exists(ctx, revokedKeyPrefix+token).Result()
	if err != nil {
		log.Printf("Failed to check token revocation: %v", err)
		// Fail closed: an unreachable denylist must not readmit
		// revoked tokens.
		return true
	}

	return exists > 0
}
