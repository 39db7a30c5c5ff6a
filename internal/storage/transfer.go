package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ytget/media-magic/internal/logger"
)

// Backend moves bytes in and out of one remote directory
type Backend interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	Download(ctx context.Context, name string, w io.Writer) error
	List(ctx context.Context) ([]string, error)
}

// BackendFactory opens a Backend for a parsed location
type BackendFactory func(loc Location) (Backend, error)

// Result is the outcome of one file transfer
type Result struct {
	Name string // remote base name
	Path string // local path
	Err  error
}

// OK reports whether the transfer succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Succeeded returns the local paths of successful transfers
func Succeeded(results []Result) []string {
	paths := make([]string, 0, len(results))
	for _, r := range results {
		if r.OK() {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

// Transfer fans file transfers out to a storage backend.
// A failed file is logged and reported in its Result; the rest still run.
type Transfer struct {
	newBackend BackendFactory
	log        logger.Logger
}

// NewTransfer creates a Transfer over the given backend factory
func NewTransfer(factory BackendFactory, log logger.Logger) *Transfer {
	return &Transfer{newBackend: factory, log: logger.OrNop(log)}
}

// NewAzureTransfer creates a Transfer against Azure Data Lake
func NewAzureTransfer(log logger.Logger) *Transfer {
	return NewTransfer(NewAzureBackend, log)
}

func (t *Transfer) open(sasURL string) (Location, Backend, error) {
	loc, err := ParseSASURL(sasURL)
	if err != nil {
		return Location{}, nil, err
	}
	backend, err := t.newBackend(loc)
	if err != nil {
		return Location{}, nil, err
	}
	return loc, backend, nil
}

// Upload writes every local path into the SAS directory under its base name
func (t *Transfer) Upload(ctx context.Context, sasURL string, paths []string) ([]Result, error) {
	loc, backend, err := t.open(sasURL)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(paths))
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			name := filepath.Base(p)
			results[i] = Result{Name: name, Path: p, Err: t.uploadOne(ctx, backend, name, p)}
			if results[i].Err != nil {
				t.log.Error(ctx, "Upload of %s to %s failed: %v", p, loc.Directory, results[i].Err)
			} else {
				t.log.Info(ctx, "Uploaded %s", name)
			}
		}(i, p)
	}
	wg.Wait()

	return results, nil
}

func (t *Transfer) uploadOne(ctx context.Context, backend Backend, name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return backend.Upload(ctx, name, data, DetectContentType(path))
}

// List returns the base names of all objects in the SAS directory
func (t *Transfer) List(ctx context.Context, sasURL string) ([]string, error) {
	_, backend, err := t.open(sasURL)
	if err != nil {
		return nil, err
	}
	names, err := backend.List(ctx)
	if err != nil {
		t.log.Error(ctx, "Listing failed: %v", err)
		return nil, err
	}
	return names, nil
}

// Download fetches each named object into destDir
func (t *Transfer) Download(ctx context.Context, sasURL string, names []string, destDir string) ([]Result, error) {
	_, backend, err := t.open(sasURL)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	results := make([]Result, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			local := filepath.Join(destDir, filepath.Base(name))
			results[i] = Result{Name: name, Path: local, Err: downloadOne(ctx, backend, name, local)}
			if results[i].Err != nil {
				t.log.Error(ctx, "Download of %s failed: %v", name, results[i].Err)
			} else {
				t.log.Info(ctx, "Downloaded %s", local)
			}
		}(i, name)
	}
	wg.Wait()

	return results, nil
}

func downloadOne(ctx context.Context, backend Backend, name, local string) error {
	f, err := os.Create(local)
	if err != nil {
		return err
	}
	if err := backend.Download(ctx, name, f); err != nil {
		f.Close()
		os.Remove(local)
		return err
	}
	return f.Close()
}
