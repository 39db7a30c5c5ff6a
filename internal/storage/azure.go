package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/file"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/filesystem"
)

// azureBackend reaches one SAS directory through the Data Lake API
type azureBackend struct {
	loc Location
	fs  *filesystem.Client
}

// NewAzureBackend creates a Backend for loc using only the SAS token as credential
func NewAzureBackend(loc Location) (Backend, error) {
	fs, err := filesystem.NewClientWithNoCredential(loc.FileSystemURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create file system client: %w", err)
	}
	return &azureBackend{loc: loc, fs: fs}, nil
}

func (b *azureBackend) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	fc := b.fs.NewFileClient(b.loc.PathOf(name))
	return fc.UploadBuffer(ctx, data, &file.UploadBufferOptions{
		HTTPHeaders: &file.HTTPHeaders{ContentType: to.Ptr(contentType)},
	})
}

func (b *azureBackend) Download(ctx context.Context, name string, w io.Writer) error {
	fc := b.fs.NewFileClient(b.loc.PathOf(name))
	resp, err := fc.DownloadStream(ctx, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = io.Copy(w, resp.Body)
	return err
}

func (b *azureBackend) List(ctx context.Context) ([]string, error) {
	opts := &filesystem.ListPathsOptions{}
	if b.loc.Directory != "" {
		opts.Prefix = to.Ptr(b.loc.Directory)
	}

	var names []string
	pager := b.fs.NewListPathsPager(true, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", b.loc.Directory, err)
		}
		for _, p := range page.Paths {
			if p.Name == nil || (p.IsDirectory != nil && *p.IsDirectory) {
				continue
			}
			names = append(names, path.Base(*p.Name))
		}
	}
	return names, nil
}
