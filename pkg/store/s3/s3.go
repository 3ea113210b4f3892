package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/charnet/internal/storage"
	"github.com/OFFIS-RIT/charnet/internal/util"
	"github.com/OFFIS-RIT/charnet/pkg/common"
	"github.com/OFFIS-RIT/charnet/pkg/logger"
	"github.com/OFFIS-RIT/charnet/pkg/store"
)

const (
	putMaxTries = 3
	putBackoff  = 200 * time.Millisecond
)

// S3GraphStorage writes the node and edge tables as objects in a bucket.
// Append mode downloads the current object and uploads it with the new rows
// added.
type S3GraphStorage struct {
	bucket  string
	nodeKey string
	edgeKey string
	opts    store.TableOptions
	client  storage.ObjectAPI
}

// NewS3GraphStorageParams defines the configuration parameters for
// creating a new S3GraphStorage.
type NewS3GraphStorageParams struct {
	Bucket  string
	NodeKey string
	EdgeKey string
	store.TableOptions
}

func NewS3GraphStorageWithClient(client storage.ObjectAPI, params NewS3GraphStorageParams) *S3GraphStorage {
	opts := params.TableOptions
	if opts.Mode == "" {
		opts.Mode = store.WriteModeOverwrite
	}
	return &S3GraphStorage{
		bucket:  params.Bucket,
		nodeKey: params.NodeKey,
		edgeKey: params.EdgeKey,
		opts:    opts,
		client:  client,
	}
}

func NewS3GraphStorage(ctx context.Context, clientParams storage.S3ClientParams, params NewS3GraphStorageParams) (*S3GraphStorage, error) {
	client, err := storage.NewS3Client(ctx, clientParams)
	if err != nil {
		return nil, err
	}
	return NewS3GraphStorageWithClient(client, params), nil
}

func (s *S3GraphStorage) SaveGraph(ctx context.Context, graph *common.Graph) error {
	var existingNodes, existingEdges []byte
	if s.opts.Mode == store.WriteModeAppend {
		var err error
		if existingNodes, err = s.existing(ctx, s.nodeKey); err != nil {
			return err
		}
		if existingEdges, err = s.existing(ctx, s.edgeKey); err != nil {
			return err
		}
	}

	nodes, edges, err := store.RenderTables(graph, s.opts, existingNodes, existingEdges)
	if err != nil {
		return fmt.Errorf("failed to render tables: %w", err)
	}

	if err := s.put(ctx, s.nodeKey, existingNodes, nodes); err != nil {
		return err
	}
	if err := s.put(ctx, s.edgeKey, existingEdges, edges); err != nil {
		return err
	}

	logger.Debug("[Store] Tables uploaded", "bucket", s.bucket, "nodes", s.nodeKey, "edges", s.edgeKey, "mode", s.opts.Mode)
	return nil
}

func (s *S3GraphStorage) existing(ctx context.Context, key string) ([]byte, error) {
	return util.RetryWithContext(ctx, putMaxTries, putBackoff, func(ctx context.Context) ([]byte, error) {
		b, err := storage.GetFile(ctx, s.client, s.bucket, key)
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil
		}
		return b, err
	})
}

func (s *S3GraphStorage) put(ctx context.Context, key string, existing []byte, content []byte) error {
	body := content
	if s.opts.Mode == store.WriteModeAppend && len(existing) > 0 {
		body = make([]byte, 0, len(existing)+len(content)+2)
		body = append(body, existing...)
		body = append(body, store.Separator(existing, s.opts.LineEnding)...)
		body = append(body, content...)
	}

	err := util.RetryErrWithContext(ctx, putMaxTries, putBackoff, func(ctx context.Context) error {
		return storage.PutFile(ctx, s.client, s.bucket, key, body)
	})
	if err != nil {
		return fmt.Errorf("failed to write s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
