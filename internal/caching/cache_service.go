package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"agencycrm/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "agencycrm:"

type CacheService interface {
	// Tenant caching. A miss returns (nil, nil).
	GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)
	SetTenant(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error
	DeleteTenant(ctx context.Context, tenantID uuid.UUID) error

	// Alert list caching
	GetAlerts(ctx context.Context, tenantID uuid.UUID) ([]models.Alert, error)
	SetAlerts(ctx context.Context, tenantID uuid.UUID, alerts []models.Alert, ttl time.Duration) error
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Rate limiting. IncrementWindow returns the hit count inside the current
	// window and the time left before it resets.
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCacheService(addr, password string, db int, logger *zap.Logger) CacheService {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Warn("Redis ping failed on initialization", zap.String("address", parsedAddr), zap.Error(pingErr))
	} else {
		logger.Debug("Redis connection established", zap.String("address", parsedAddr))
	}

	return NewCacheServiceWithClient(client, logger)
}

// NewCacheServiceWithClient wraps an existing client.
func NewCacheServiceWithClient(client *redis.Client, logger *zap.Logger) CacheService {
	return &redisCacheService{client: client, logger: logger}
}

func tenantKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("%stenant:%s", keyPrefix, tenantID.String())
}

func alertsKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("%salerts:%s", keyPrefix, tenantID.String())
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// cachedTenant keeps the API key, which models.Tenant hides from JSON.
type cachedTenant struct {
	models.Tenant
	WhatsappAPIKey *string `json:"whatsapp_api_key"`
}

func (r *redisCacheService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	var cached cachedTenant
	found, err := r.getJSON(ctx, tenantKey(tenantID), &cached)
	if err != nil || !found {
		return nil, err
	}
	tenant := cached.Tenant
	tenant.WhatsappAPIKey = cached.WhatsappAPIKey
	return &tenant, nil
}

func (r *redisCacheService) SetTenant(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	return r.setJSON(ctx, tenantKey(tenant.ID), cachedTenant{Tenant: *tenant, WhatsappAPIKey: tenant.WhatsappAPIKey}, ttl)
}

func (r *redisCacheService) DeleteTenant(ctx context.Context, tenantID uuid.UUID) error {
	return r.client.Del(ctx, tenantKey(tenantID)).Err()
}

func (r *redisCacheService) GetAlerts(ctx context.Context, tenantID uuid.UUID) ([]models.Alert, error) {
	var alerts []models.Alert
	found, err := r.getJSON(ctx, alertsKey(tenantID), &alerts)
	if err != nil || !found {
		return nil, err
	}
	return alerts, nil
}

func (r *redisCacheService) SetAlerts(ctx context.Context, tenantID uuid.UUID, alerts []models.Alert, ttl time.Duration) error {
	return r.setJSON(ctx, alertsKey(tenantID), alerts, ttl)
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	return r.client.Del(ctx, tenantKey(tenantID), alertsKey(tenantID)).Err()
}

func (r *redisCacheService) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	cacheKey := fmt.Sprintf("%sratelimit:%s", keyPrefix, key)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, cacheKey)
	pipe.ExpireNX(ctx, cacheKey, window)
	ttl := pipe.PTTL(ctx, cacheKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
