package platform

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/media-magic/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters
const (
	PlaylistParam           = "list"
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// playlistFetcher lists the videos of a playlist
type playlistFetcher interface {
	Items(ctx context.Context, playlistID string) ([]*model.PlaylistVideo, error)
}

type ytdlpPlaylistFetcher struct{}

func (ytdlpPlaylistFetcher) Items(ctx context.Context, playlistID string) ([]*model.PlaylistVideo, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	videos := make([]*model.PlaylistVideo, 0, len(items))
	for _, it := range items {
		videos = append(videos, &model.PlaylistVideo{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	return videos, nil
}

// PlaylistParser expands YouTube playlist links into their videos
type PlaylistParser struct {
	timeout time.Duration
	fetcher playlistFetcher
}

// NewPlaylistParser creates a new playlist parser
func NewPlaylistParser() *PlaylistParser {
	return &PlaylistParser{
		timeout: DefaultParseTimeout,
		fetcher: ytdlpPlaylistFetcher{},
	}
}

// SetTimeout sets the timeout for parsing operations
func (p *PlaylistParser) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// ParsePlaylist fetches the videos of a playlist URL
func (p *PlaylistParser) ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	playlistID := ExtractPlaylistID(rawURL)
	if playlistID == "" {
		return nil, fmt.Errorf("invalid playlist URL: %s", rawURL)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	videos, err := p.fetcher.Items(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	playlist := model.NewPlaylist(playlistID, rawURL)
	for _, video := range videos {
		playlist.AddVideo(video)
	}
	if len(videos) > 0 {
		playlist.Title = videos[0].Title
	}
	return playlist, nil
}

// ExpandURL returns the video links behind rawURL. Playlist links are
// expanded, anything else is returned as is.
func (p *PlaylistParser) ExpandURL(ctx context.Context, rawURL string) ([]string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if ExtractPlaylistID(rawURL) == "" {
		return []string{rawURL}, nil
	}
	playlist, err := p.ParsePlaylist(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return playlist.VideoURLs(), nil
}

// ExpandAll expands every URL in urls, keeping their order
func (p *PlaylistParser) ExpandAll(ctx context.Context, urls []string) ([]string, error) {
	var out []string
	for _, u := range urls {
		expanded, err := p.ExpandURL(ctx, u)
		if err != nil {
			return out, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// ExtractPlaylistID returns the list= parameter of a YouTube URL
func ExtractPlaylistID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Query().Get(PlaylistParam)
}

// ReadURLList reads one URL per line, skipping blank lines and # comments
func ReadURLList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}
