package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DialFunc establishes a new database handle.
type DialFunc func(ctx context.Context) (*MongoDB, error)

// Connector owns the process-wide database handle. It is constructed once at
// startup, passed to whoever needs the database, and closed on shutdown.
//
// The first Connect dials; later calls return the cached handle. Concurrent
// callers during the first dial share that attempt. A failed attempt is not
// cached, so the next Connect dials again.
type Connector struct {
	dial        DialFunc
	dialTimeout time.Duration

	group    singleflight.Group
	mu       sync.Mutex
	db       *MongoDB
	attempts atomic.Int64
}

// NewConnector creates a connector that dials MongoDB at uri.
func NewConnector(uri string) *Connector {
	return NewConnectorWithDialer(func(ctx context.Context) (*MongoDB, error) {
		return NewMongoDB(ctx, uri)
	})
}

// NewConnectorWithDialer creates a connector around a custom dial function.
func NewConnectorWithDialer(dial DialFunc) *Connector {
	return &Connector{
		dial:        dial,
		dialTimeout: 15 * time.Second,
	}
}

// Connect returns the cached handle, dialing on first use.
func (c *Connector) Connect(ctx context.Context) (*MongoDB, error) {
	if db := c.cached(); db != nil {
		return db, nil
	}

	v, err, _ := c.group.Do("connect", func() (interface{}, error) {
		if db := c.cached(); db != nil {
			return db, nil
		}

		c.attempts.Add(1)

		// The shared attempt must not die with whichever caller started it
		dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.dialTimeout)
		defer cancel()

		db, err := c.dial(dialCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.db = db
		c.mu.Unlock()
		return db, nil
	})
	if err != nil {
		return nil, fmt.Errorf("database connect failed: %w", err)
	}

	return v.(*MongoDB), nil
}

// Attempts returns how many times the connector has dialed.
func (c *Connector) Attempts() int64 {
	return c.attempts.Load()
}

// Close disconnects the cached handle, if any. A later Connect dials again.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	db := c.db
	c.db = nil
	c.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close(ctx)
}

func (c *Connector) cached() *MongoDB {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}
