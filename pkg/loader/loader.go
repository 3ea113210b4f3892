package loader

import (
	"context"
	"errors"
)

// ErrMissingInputFile is returned, wrapped with the path or key, when an
// input source cannot be opened.
var ErrMissingInputFile = errors.New("missing input file")

// TextFile is one of the pipeline inputs: the narrative text, the name
// dictionary or the synonym table. The content is retrieved through Loader.
type TextFile struct {
	ID       string
	FilePath string
	Loader   TextFileLoader
}

// NewTextFile creates a TextFile identified by its path.
func NewTextFile(path string, l TextFileLoader) TextFile {
	return TextFile{
		ID:       path,
		FilePath: path,
		Loader:   l,
	}
}

// GetText retrieves the raw content of the file using its Loader.
//
// Example:
//
//	text, err := file.GetText(ctx)
//	if errors.Is(err, loader.ErrMissingInputFile) {
//		log.Fatal(err)
//	}
func (f *TextFile) GetText(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, errors.New("text file has no loader")
	}
	return f.Loader.GetFileText(ctx, *f)
}

// TextFileLoader defines the interface for loading the contents of a
// TextFile. Implementations may load files from disk, object storage or
// memory.
type TextFileLoader interface {
	GetFileText(ctx context.Context, file TextFile) ([]byte, error)
}

// CacheKey identifies file contents in loader caches.
func CacheKey(file TextFile) string {
	return file.ID + ":" + file.FilePath
}

// MemoryLoader serves files from an in-memory map keyed by path.
type MemoryLoader map[string][]byte

func (m MemoryLoader) GetFileText(ctx context.Context, file TextFile) ([]byte, error) {
	content, ok := m[file.FilePath]
	if !ok {
		return nil, &MissingFileError{Path: file.FilePath}
	}
	return content, nil
}

// MissingFileError reports an input that could not be opened.
type MissingFileError struct {
	Path string
	Err  error
}

func (e *MissingFileError) Error() string {
	if e.Err == nil {
		return ErrMissingInputFile.Error() + ": " + e.Path
	}
	return ErrMissingInputFile.Error() + ": " + e.Path + ": " + e.Err.Error()
}

func (e *MissingFileError) Is(target error) bool {
	return target == ErrMissingInputFile
}

func (e *MissingFileError) Unwrap() error {
	return e.Err
}
