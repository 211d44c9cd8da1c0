package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const availabilityTTL = time.Minute

// AvailabilityCache кеширует списки свободных слотов учителей в Redis.
// Работает best-effort: при недоступном Redis чтение идёт мимо кеша.
// Nil-приёмник допустим - кеш просто отключён.
type AvailabilityCache struct {
	client *redis.Client
	logger *zap.Logger
}

// New создаёт кеш. Пустой addr возвращает nil - кеш отключён.
func New(addr string, logger *zap.Logger) *AvailabilityCache {
	if addr == "" {
		return nil
	}
	return &AvailabilityCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		logger: logger,
	}
}

func availabilityKey(teacherID int64) string {
	return fmt.Sprintf("availability:%d", teacherID)
}

// GetSlots возвращает кешированный список свободных слотов учителя.
func (c *AvailabilityCache) GetSlots(ctx context.Context, teacherID int64) ([]*model.Slot, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, availabilityKey(teacherID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Redis get failed", zap.Error(err))
		}
		return nil, false
	}

	var slots []*model.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		c.logger.Warn("Failed to decode cached slots", zap.Error(err))
		return nil, false
	}

	return slots, true
}

// SetSlots кеширует список свободных слотов учителя.
func (c *AvailabilityCache) SetSlots(ctx context.Context, teacherID int64, slots []*model.Slot) {
	if c == nil {
		return
	}

	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, availabilityKey(teacherID), data, availabilityTTL).Err(); err != nil {
		c.logger.Warn("Redis set failed", zap.Error(err))
	}
}

// Invalidate сбрасывает кеш учителя. Вызывается при любой мутации его слотов.
func (c *AvailabilityCache) Invalidate(ctx context.Context, teacherID int64) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, availabilityKey(teacherID)).Err(); err != nil {
		c.logger.Warn("Redis del failed", zap.Error(err))
	}
}

// Close закрывает соединение с Redis.
func (c *AvailabilityCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
