package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewStoreForTest wraps a rueidis client (usually a mock) without dialing.
func NewStoreForTest(c rueidis.Client, localTTL time.Duration) *Store {
	return &Store{client: c, localTTL: localTTL}
}
