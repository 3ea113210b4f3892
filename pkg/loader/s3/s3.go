package s3

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/OFFIS-RIT/charnet/internal/storage"
	"github.com/OFFIS-RIT/charnet/internal/util"
	"github.com/OFFIS-RIT/charnet/pkg/loader"

	"golang.org/x/sync/singleflight"
)

const (
	getMaxTries = 3
	getBackoff  = 200 * time.Millisecond
)

// S3TextFileLoader is a TextFileLoader implementation that loads file
// contents from an S3 bucket. TextFile.FilePath is used as the object key.
//
// Transient failures are retried; a missing key is reported as
// loader.ErrMissingInputFile without retrying.
type S3TextFileLoader struct {
	bucket string
	client storage.ObjectAPI

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewS3TextFileLoaderWithClient creates a new S3TextFileLoader using an
// existing client.
func NewS3TextFileLoaderWithClient(bucket string, client storage.ObjectAPI) *S3TextFileLoader {
	return &S3TextFileLoader{
		bucket: bucket,
		client: client,
		cache:  make(map[string][]byte),
	}
}

// NewS3TextFileLoaderParams defines the configuration parameters for
// creating a new S3TextFileLoader.
type NewS3TextFileLoaderParams struct {
	Bucket string
	storage.S3ClientParams
}

// NewS3TextFileLoader creates a new S3TextFileLoader with its own client.
//
// Example:
//
//	l, err := s3.NewS3TextFileLoader(ctx, s3.NewS3TextFileLoaderParams{
//		Bucket:         "charnet",
//		S3ClientParams: storage.S3ClientParamsFromEnv(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	file := loader.NewTextFile("novels/jsjs.txt", l)
//	text, err := file.GetText(ctx)
func NewS3TextFileLoader(ctx context.Context, params NewS3TextFileLoaderParams) (*S3TextFileLoader, error) {
	client, err := storage.NewS3Client(ctx, params.S3ClientParams)
	if err != nil {
		return nil, err
	}

	return NewS3TextFileLoaderWithClient(params.Bucket, client), nil
}

// GetFileText retrieves the contents of the given TextFile from the
// configured bucket.
func (l *S3TextFileLoader) GetFileText(ctx context.Context, file loader.TextFile) ([]byte, error) {
	cacheKey := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[cacheKey]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(cacheKey, func() (any, error) {
		byts, err := util.RetryWithContext(ctx, getMaxTries, getBackoff, func(ctx context.Context) ([]byte, error) {
			b, err := storage.GetFile(ctx, l.client, l.bucket, file.FilePath)
			if errors.Is(err, storage.ErrObjectNotFound) {
				return nil, util.Permanent(&loader.MissingFileError{Path: "s3://" + l.bucket + "/" + file.FilePath, Err: err})
			}
			return b, err
		})
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[cacheKey] = byts
		l.cacheMu.Unlock()

		return byts, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
