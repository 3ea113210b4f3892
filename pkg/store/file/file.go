package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/OFFIS-RIT/charnet/pkg/common"
	"github.com/OFFIS-RIT/charnet/pkg/logger"
	"github.com/OFFIS-RIT/charnet/pkg/store"
)

// FileGraphStorage writes the node and edge tables to local files.
type FileGraphStorage struct {
	nodePath string
	edgePath string
	opts     store.TableOptions
}

// NewFileGraphStorageParams defines the configuration parameters for
// creating a new FileGraphStorage.
type NewFileGraphStorageParams struct {
	NodePath string
	EdgePath string
	store.TableOptions
}

func NewFileGraphStorage(params NewFileGraphStorageParams) *FileGraphStorage {
	opts := params.TableOptions
	if opts.Mode == "" {
		opts.Mode = store.WriteModeOverwrite
	}
	return &FileGraphStorage{
		nodePath: params.NodePath,
		edgePath: params.EdgePath,
		opts:     opts,
	}
}

func (s *FileGraphStorage) SaveGraph(ctx context.Context, graph *common.Graph) error {
	var existingNodes, existingEdges []byte
	if s.opts.Mode == store.WriteModeAppend {
		var err error
		if existingNodes, err = readExisting(s.nodePath); err != nil {
			return err
		}
		if existingEdges, err = readExisting(s.edgePath); err != nil {
			return err
		}
	}

	nodes, edges, err := store.RenderTables(graph, s.opts, existingNodes, existingEdges)
	if err != nil {
		return fmt.Errorf("failed to render tables: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.write(s.nodePath, existingNodes, nodes); err != nil {
		return err
	}
	if err := s.write(s.edgePath, existingEdges, edges); err != nil {
		return err
	}

	logger.Debug("[Store] Tables written", "nodes", s.nodePath, "edges", s.edgePath, "mode", s.opts.Mode)
	return nil
}

func readExisting(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read existing table %s: %w", path, err)
	}
	return b, nil
}

func (s *FileGraphStorage) write(path string, existing []byte, content []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}

	if s.opts.Mode == store.WriteModeAppend {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open table %s: %w", path, err)
		}
		defer f.Close()
		if sep := store.Separator(existing, s.opts.LineEnding); sep != nil {
			if _, err := f.Write(sep); err != nil {
				return fmt.Errorf("failed to append to table %s: %w", path, err)
			}
		}
		if _, err := f.Write(content); err != nil {
			return fmt.Errorf("failed to append to table %s: %w", path, err)
		}
		return f.Close()
	}

	// Write next to the target and rename so a failed run never leaves a
	// truncated table behind.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write table %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write table %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to write table %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace table %s: %w", path, err)
	}
	return nil
}
