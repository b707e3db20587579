package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	levelstorage "github.com/syndtr/goleveldb/leveldb/storage"
)

type LevelDB struct {
	db *leveldb.DB
}

func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

// NewLevelDBInMemory backs the store with leveldb's memory storage.
func NewLevelDBInMemory() (*LevelDB, error) {
	db, err := leveldb.Open(levelstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(_ context.Context, key string) (string, error) {
	value, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (l *LevelDB) Set(_ context.Context, key string, value string) error {
	return l.db.Put([]byte(key), []byte(value), nil)
}

func (l *LevelDB) Remove(_ context.Context, key string) error {
	return l.db.Delete([]byte(key), nil)
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
