// Package cache кэширует справочник карго-фирм в redis. Справочник меняется
// редко и читается на каждой форме создания отправления.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/kargopanel/backend/internal/domain"
)

const (
	carriersKey = "carriers:active"
	carriersTTL = 10 * time.Minute
)

type CarrierCache struct {
	client *redis.Client
}

func NewCarrierCache(client *redis.Client) *CarrierCache {
	return &CarrierCache{client: client}
}

// Get возвращает (nil, nil) при промахе кэша.
func (c *CarrierCache) Get(ctx context.Context) ([]domain.Carrier, error) {
	payload, err := c.client.Get(ctx, carriersKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading carriers from redis")
	}

	var carriers []domain.Carrier
	if unmarshalErr := json.Unmarshal(payload, &carriers); unmarshalErr != nil {
		return nil, errors.Wrap(unmarshalErr, "unmarshaling cached carriers")
	}
	return carriers, nil
}

func (c *CarrierCache) Set(ctx context.Context, carriers []domain.Carrier) error {
	payload, err := json.Marshal(carriers)
	if err != nil {
		return errors.Wrap(err, "marshaling carriers")
	}
	if setErr := c.client.Set(ctx, carriersKey, payload, carriersTTL).Err(); setErr != nil {
		return errors.Wrap(setErr, "writing carriers to redis")
	}
	return nil
}

func (c *CarrierCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, carriersKey).Err(); err != nil {
		return errors.Wrap(err, "invalidating carriers cache")
	}
	return nil
}
