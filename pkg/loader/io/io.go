package io

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/OFFIS-RIT/charnet/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// IOTextFileLoader loads files directly from the local filesystem with caching.
type IOTextFileLoader struct {
	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewIOTextFileLoader creates a new filesystem-based file loader.
func NewIOTextFileLoader() *IOTextFileLoader {
	return &IOTextFileLoader{
		cache: make(map[string][]byte),
	}
}

// GetFileText reads the file content from the filesystem. Results are cached.
// A file that cannot be opened yields a *loader.MissingFileError.
func (l *IOTextFileLoader) GetFileText(ctx context.Context, file loader.TextFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := os.ReadFile(file.FilePath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				return nil, &loader.MissingFileError{Path: file.FilePath, Err: err}
			}
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = result
		l.cacheMu.Unlock()

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
