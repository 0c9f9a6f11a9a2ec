// Package cache stores rendered chart artifacts so repeated runs over an
// unchanged survey table skip the render step.
//
// Four backends implement [Cache]:
//
//   - [FileCache]: sharded JSON files under a directory, the CLI default
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys come from a [Keyer]. The default keyer hashes the survey file contents
// together with every render option that changes the output bytes, so a key
// stays valid exactly as long as the artifact it names.
package cache

import (
	"context"
	"fmt"
	"time"
)

// TTLArtifact is how long a rendered artifact stays cached.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte store with optional expiry. Get reports a miss with
// ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Backends lists the valid backend names.
var Backends = []string{BackendFile, BackendRedis, BackendMongo, BackendNone}

// Config selects and configures a backend.
type Config struct {
	Backend string // one of Backends; empty means file
	Dir     string // file backend directory
	URL     string // redis:// or mongodb:// connection string
	Prefix  string // optional key namespace for shared backends
}

// Open builds the cache described by cfg.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendFile:
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(cfg.URL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, cfg.URL, mongoDatabase, mongoCollection)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (valid: %v)", cfg.Backend, Backends)
	}
}
