// Package transactioncache caches immutable transaction records in Redis.
package transactioncache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-petr/pet-account/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "transaction:"

// Connect opens a Redis client and checks that the server answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return client, nil
}

// Redis is a transaction cache backed by a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a cache keeping entries for ttl. Zero ttl keeps them forever.
func New(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
	}
}

type record struct {
	ID              int64                    `json:"id"`
	TransactionID   string                   `json:"transaction_id"`
	AccountID       int64                    `json:"account_id"`
	AccountNumber   string                   `json:"account_number"`
	Type            domain.TransactionType   `json:"transaction_type"`
	Result          domain.TransactionResult `json:"transaction_result"`
	Amount          int64                    `json:"amount"`
	BalanceSnapshot int64                    `json:"balance_snapshot"`
	TransactedAt    time.Time                `json:"transacted_at"`
}

// Get returns the cached transaction. The boolean is false on a cache miss.
func (c *Redis) Get(ctx context.Context, transactionID string) (domain.Transaction, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+transactionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Transaction{}, false, nil
	}

	if err != nil {
		return domain.Transaction{}, false, fmt.Errorf("get %s: %w", transactionID, err)
	}

	var r record
	if err := json.Unmarshal(val, &r); err != nil {
		return domain.Transaction{}, false, fmt.Errorf("decode %s: %w", transactionID, err)
	}

	return domain.Transaction(r), true, nil
}

// Set stores t under its transaction id.
func (c *Redis) Set(ctx context.Context, t domain.Transaction) error {
	val, err := json.Marshal(record(t))
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.TransactionID, err)
	}

	if err := c.client.Set(ctx, keyPrefix+t.TransactionID, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", t.TransactionID, err)
	}

	return nil
}

// Nop is a cache that never holds anything.
type Nop struct{}

// Get always reports a miss.
func (Nop) Get(ctx context.Context, transactionID string) (domain.Transaction, bool, error) {
	return domain.Transaction{}, false, nil
}

// Set does nothing.
func (Nop) Set(ctx context.Context, t domain.Transaction) error {
	return nil
}
