// Package redis provides a Redis client component with connection pooling,
// lifecycle management, and health checks.
//
// It wraps go-redis with service logging and configuration conventions.
// TypedStore layers JSON-serialized values on top of the client and backs the
// redis transcript store:
//
//	store := redis.NewTypedStore[[]media.Segment](client, "scribe:transcript")
//	segs, ok, err := store.Load(ctx, clipID)
package redis
