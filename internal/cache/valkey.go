package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr         string
	Password     string
	UsersHashKey string
	CityListTTL  time.Duration
}

const cityListKey = "cities:list"

// ValkeyClient caches the hot read paths: Basic Auth credential lookups and
// the city list. Everything here is an optimization layer; callers must
// fall back to the database on any cache error.
type ValkeyClient struct {
	client       *redis.Client
	usersHashKey string
	cityListTTL  time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:       rdb,
		usersHashKey: cfg.UsersHashKey,
		cityListTTL:  cfg.CityListTTL,
	}, nil
}

// GetUserIDByAuth looks up a user id by phone and password hash.
func (v *ValkeyClient) GetUserIDByAuth(ctx context.Context, phone, passwordHash string) (int64, error) {
	field := phone + ":" + passwordHash

	val, err := v.client.HGet(ctx, v.usersHashKey, field).Result()
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt cache entry for %s: %w", phone, err)
	}

	return id, nil
}

// SetUserAuth stores a verified credential pair for fast re-auth.
func (v *ValkeyClient) SetUserAuth(ctx context.Context, phone, passwordHash string, userID int64) error {
	field := phone + ":" + passwordHash
	return v.client.HSet(ctx, v.usersHashKey, field, strconv.FormatInt(userID, 10)).Err()
}

// GetCityListRaw returns the cached city list as raw JSON to skip a
// marshal round-trip on cache hits.
func (v *ValkeyClient) GetCityListRaw(ctx context.Context) ([]byte, error) {
	return v.client.Get(ctx, cityListKey).Bytes()
}

func (v *ValkeyClient) SetCityList(ctx context.Context, cities interface{}) error {
	payload, err := json.Marshal(cities)
	if err != nil {
		return fmt.Errorf("failed to marshal city list: %w", err)
	}
	return v.client.Set(ctx, cityListKey, payload, v.cityListTTL).Err()
}

func (v *ValkeyClient) InvalidateCityList(ctx context.Context) error {
	return v.client.Del(ctx, cityListKey).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
