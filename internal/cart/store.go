package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists a cart between visits, keyed by an opaque cart token held
// by the client. A missing token loads as an empty cart: the cart is a
// transient entity, not a server-side record.
type Store interface {
	Load(ctx context.Context, token string) (Cart, error)
	Save(ctx context.Context, token string, c Cart) error
	Delete(ctx context.Context, token string) error
}

// RedisStore keeps the serialized cart in Redis with a sliding TTL.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func cartKey(token string) string {
	return "cart:" + token
}

// Load reads and decodes the cart for the token. Unknown tokens yield an
// empty cart.
func (s RedisStore) Load(ctx context.Context, token string) (Cart, error) {
	if s.Client == nil {
		return Cart{}, fmt.Errorf("cart store not configured")
	}
	if token == "" {
		return Cart{}, fmt.Errorf("cart token required: %w", ErrInvalidInput)
	}
	data, err := s.Client.Get(ctx, cartKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Cart{}, nil
		}
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// Save serializes the cart and refreshes its TTL.
func (s RedisStore) Save(ctx context.Context, token string, c Cart) error {
	if s.Client == nil {
		return fmt.Errorf("cart store not configured")
	}
	if token == "" {
		return fmt.Errorf("cart token required: %w", ErrInvalidInput)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.Client.Set(ctx, cartKey(token), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Delete drops the stored cart. Missing tokens are not an error.
func (s RedisStore) Delete(ctx context.Context, token string) error {
	if s.Client == nil {
		return fmt.Errorf("cart store not configured")
	}
	if token == "" {
		return nil
	}
	return s.Client.Del(ctx, cartKey(token)).Err()
}
