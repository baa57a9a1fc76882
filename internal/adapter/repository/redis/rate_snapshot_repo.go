package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/simaogato/walletfx-backend/internal/adapter/ratecodec"
	"github.com/simaogato/walletfx-backend/internal/domain"
)

const keyPrefix = "walletfx:rates:"

// keyValue is the subset of the redis client the store uses
type keyValue interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// rateSnapshotRepository keeps only the latest table per base
type rateSnapshotRepository struct {
	client keyValue
	ttl    time.Duration
}

// NewRateSnapshotRepository creates a redis backed snapshot store; ttl 0 keeps keys forever
func NewRateSnapshotRepository(client keyValue, ttl time.Duration) domain.RateSnapshotRepository {
	return &rateSnapshotRepository{client: client, ttl: ttl}
}

// NewClient connects to redis and checks the connection
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to ping redis at %s", addr)
	}
	return client, nil
}

func (r *rateSnapshotRepository) Save(ctx context.Context, table *domain.RateTable) error {
	data, err := ratecodec.Marshal(table)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key(table.Base()), data, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to store rate snapshot")
	}
	return nil
}

func (r *rateSnapshotRepository) GetLatest(ctx context.Context, base domain.CurrencyCode) (*domain.RateTable, error) {
	data, err := r.client.Get(ctx, key(base)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("no rate snapshot for base %s: %w", base, domain.ErrRatesNotFound)
		}
		return nil, errors.Wrap(err, "failed to read rate snapshot")
	}
	return ratecodec.Unmarshal(data)
}

func key(base domain.CurrencyCode) string {
	return keyPrefix + base.String()
}
