package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"labbook/pkg/config"
	"labbook/pkg/model"

	"github.com/redis/go-redis/v9"
)

// CalendarCache is a read-through cache over calendar queries. Entries live
// for a short TTL, so a freshly approved booking may lag in calendar reads by
// at most that long; availability checks never go through here.
type CalendarCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCalendarCache(cfg *config.Config) *CalendarCache {
	return &CalendarCache{
		client: cfg.Client.Redis,
		ttl:    cfg.CalendarCacheTTL,
	}
}

// Get returns the cached bookings for the key, or nil on a miss.
func (c *CalendarCache) Get(ctx context.Context, key string) ([]*model.Booking, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *CalendarCache) Set(ctx context.Context, key string, bookings []*model.Booking) error {
	payload, err := json.Marshal(bookings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

// Key builds a cache key from the calendar filter. Bounds are truncated to
// the minute so near-identical polls share an entry.
func Key(labID, siteID string, from, to time.Time) string {
	return fmt.Sprintf("calendar:%s:%s:%d:%d",
		labID, siteID,
		from.Truncate(time.Minute).Unix(),
		to.Truncate(time.Minute).Unix(),
	)
}
