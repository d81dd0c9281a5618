package cache

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	// InvalidationChannel is the Redis Pub/Sub channel used for cache
	// invalidation signals between devops-mcps instances sharing an L2.
	InvalidationChannel = "devops-mcps:cache:invalidate"

	// FlushSignal invalidates the whole local cache. Published when an
	// operator runs the clear_cache tool on any instance.
	FlushSignal = "*"
)

// Invalidator listens for invalidation signals over Redis Pub/Sub and
// evicts the corresponding keys from a local cache (the L1 layer of a
// tiered setup).
type Invalidator struct {
	local  Cache
	client *redis.Client
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewInvalidator creates an invalidator that subscribes to Redis
// Pub/Sub and evicts keys from the local cache when signals arrive.
func NewInvalidator(local Cache, client *redis.Client) *Invalidator {
	return &Invalidator{local: local, client: client}
}

// Start begins listening for invalidation signals. It blocks until the
// context is cancelled or Close is called, so callers run it in its own
// goroutine.
func (iv *Invalidator) Start(ctx context.Context) {
	subCtx, cancel := context.WithCancel(ctx)
	iv.mu.Lock()
	iv.cancel = cancel
	iv.mu.Unlock()

	pubsub := iv.client.Subscribe(subCtx, InvalidationChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			iv.handle(subCtx, msg.Payload)
		}
	}
}

// handle applies one invalidation signal to the local cache.
func (iv *Invalidator) handle(ctx context.Context, payload string) {
	if payload == FlushSignal {
		_ = iv.local.Clear(ctx)
		return
	}
	_ = iv.local.Delete(ctx, payload)
}

// PublishInvalidation signals all instances to drop the given key.
func (iv *Invalidator) PublishInvalidation(ctx context.Context, key string) error {
	return iv.client.Publish(ctx, InvalidationChannel, key).Err()
}

// PublishFlush signals all instances to drop their entire local cache.
func (iv *Invalidator) PublishFlush(ctx context.Context) error {
	return iv.client.Publish(ctx, InvalidationChannel, FlushSignal).Err()
}

// Close stops the listener.
func (iv *Invalidator) Close() {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	if iv.cancel != nil {
		iv.cancel()
		iv.cancel = nil
	}
}
