// Package storage holds the durable key-value stores the application
// persists into. Every backend stores plain string values under string
// keys, the same contract a browser's local storage offers.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

type KeyValue interface {
	// Get returns ErrNotFound when the key has never been set or was removed.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

const (
	DriverMemory  = "memory"
	DriverLevelDB = "leveldb"
	DriverMongo   = "mongo"
	DriverRedis   = "redis"
)

type Options struct {
	Driver string

	LevelDBPath string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

/*
* Open the backend selected by the driver name
* Remote backends are pinged before being returned
 */
func Open(ctx context.Context, opts Options) (KeyValue, error) {
	var (
		kv  KeyValue
		err error
	)
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverLevelDB, "":
		kv, err = OpenLevelDB(opts.LevelDBPath)
	case DriverMongo:
		kv, err = OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	case DriverRedis:
		kv, err = OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return kv, nil
}
