package download

import (
	"context"

	"github.com/ytget/ytdlp/v2"
)

// Format selection passed to ytdlp
const (
	DefaultQuality   = "best"
	DefaultExtension = "mp4"
)

// ytdlpFetcher downloads through the ytdlp library
type ytdlpFetcher struct {
	quality string
	ext     string
}

func (f ytdlpFetcher) Fetch(ctx context.Context, url, outputPath string, onProgress func(percent float64)) (string, error) {
	info, err := ytdlp.New().
		WithFormat(f.quality, f.ext).
		WithOutputPath(outputPath).
		WithProgress(func(p ytdlp.Progress) {
			if onProgress != nil {
				onProgress(p.Percent)
			}
		}).
		Download(ctx, url)
	if err != nil {
		return "", err
	}
	if info == nil {
		return "", nil
	}
	return info.Title, nil
}
