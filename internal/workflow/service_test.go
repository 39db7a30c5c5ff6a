package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/media-magic/internal/batch"
	"github.com/ytget/media-magic/internal/media"
	"github.com/ytget/media-magic/internal/model"
)

type fakeMedia struct {
	dir        string
	trimErr    error
	extractErr map[string]error

	mu       sync.Mutex
	trims    [][2]time.Duration
	extracts []string
}

func (f *fakeMedia) Probe(ctx context.Context, path string) (media.Info, error) {
	return media.Info{Path: path, Duration: time.Minute}, nil
}

func (f *fakeMedia) Trim(ctx context.Context, src string, start, end time.Duration, destDir string) (string, error) {
	f.mu.Lock()
	f.trims = append(f.trims, [2]time.Duration{start, end})
	f.mu.Unlock()
	if f.trimErr != nil {
		return "", f.trimErr
	}
	return f.touch(filepath.Join(destDir, "trimmed.mp3"))
}

func (f *fakeMedia) ExtractAudio(ctx context.Context, videoPath, destDir string) (string, error) {
	f.mu.Lock()
	f.extracts = append(f.extracts, filepath.Base(videoPath))
	f.mu.Unlock()
	if err := f.extractErr[filepath.Base(videoPath)]; err != nil {
		return "", err
	}
	return f.touch(filepath.Join(destDir, filepath.Base(videoPath)+".mp3"))
}

func (f *fakeMedia) Split(ctx context.Context, src string, chunkDuration time.Duration, destDir string) ([]model.AudioChunk, error) {
	return nil, nil
}

func (f *fakeMedia) touch(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte("audio"), 0644)
}

type fakeDownloader struct {
	dir string
	err error
}

func (f *fakeDownloader) Download(ctx context.Context, url string) (*model.DownloadTask, error) {
	task := &model.DownloadTask{URL: url, OutputPath: filepath.Join(f.dir, "video.mp4")}
	if f.err != nil {
		task.Status = model.TaskStatusError
		return task, f.err
	}
	task.Status = model.TaskStatusCompleted
	return task, os.WriteFile(task.OutputPath, []byte("video"), 0644)
}

type fakeTranscriber struct {
	requests []batch.Request
	seenKey  string
	// files present on disk while Run executed
	existed []bool
}

func (f *fakeTranscriber) Run(ctx context.Context, req batch.Request) batch.Result {
	f.requests = append(f.requests, req)
	for _, file := range req.Files {
		_, err := os.Stat(file)
		f.existed = append(f.existed, err == nil)
	}
	if req.OnProgress != nil {
		req.OnProgress(batch.MsgComplete)
	}
	return batch.Result{JobID: "job-1", State: model.BatchStateCompleted}
}

type fixture struct {
	service     *Service
	media       *fakeMedia
	downloader  *fakeDownloader
	transcriber *fakeTranscriber
	dirs        Directories
	progress    []string
	factoryHits int
}

func newFixture(t *testing.T, key string) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		dirs: Directories{
			Temp:        filepath.Join(root, "temp"),
			Transcripts: filepath.Join(root, "transcripts"),
		},
		transcriber: &fakeTranscriber{},
	}
	f.media = &fakeMedia{dir: f.dirs.Temp}
	f.downloader = &fakeDownloader{dir: root}
	factory := func(apiKey string) Transcriber {
		f.factoryHits++
		f.transcriber.seenKey = apiKey
		return f.transcriber
	}
	f.service = NewService(f.media, f.downloader, factory, func() string { return key }, f.dirs, nil)
	return f
}

func (f *fixture) onProgress(msg string) {
	f.progress = append(f.progress, msg)
}

func TestTranscribeAudio(t *testing.T) {
	f := newFixture(t, " secret ")

	result := f.service.TranscribeAudio(context.Background(), AudioRequest{
		Path:  "/music/lecture.mp3",
		Start: 5 * time.Second,
		End:   time.Minute,
	}, f.onProgress)

	require.NoError(t, result.Err)
	assert.Equal(t, model.BatchStateCompleted, result.State)
	assert.Equal(t, "secret", f.transcriber.seenKey)
	assert.Equal(t, [][2]time.Duration{{5 * time.Second, time.Minute}}, f.media.trims)
	require.Len(t, f.transcriber.requests, 1)
	assert.Equal(t, f.dirs.Transcripts, f.transcriber.requests[0].DestDir)
	assert.Equal(t, []bool{true}, f.transcriber.existed)
	assert.Equal(t, []string{MsgTrimming, batch.MsgComplete}, f.progress)

	_, err := os.Stat(filepath.Join(f.dirs.Temp, "trimmed.mp3"))
	assert.True(t, os.IsNotExist(err), "trimmed file should be removed")
}

func TestTranscribeAudio_MissingKey(t *testing.T) {
	f := newFixture(t, "")

	result := f.service.TranscribeAudio(context.Background(), AudioRequest{Path: "/a.mp3"}, f.onProgress)

	assert.ErrorIs(t, result.Err, ErrMissingAPIKey)
	assert.Equal(t, model.BatchStateFailed, result.State)
	assert.Equal(t, []string{MsgMissingAPIKey}, f.progress)
	assert.Zero(t, f.factoryHits)
	assert.Empty(t, f.media.trims)
}

func TestTranscribeAudio_InvalidRange(t *testing.T) {
	f := newFixture(t, "key")

	result := f.service.TranscribeAudio(context.Background(), AudioRequest{
		Path:  "/a.mp3",
		Start: time.Minute,
		End:   time.Minute,
	}, f.onProgress)

	assert.ErrorIs(t, result.Err, ErrInvalidRange)
	assert.Empty(t, f.media.trims)
	assert.Empty(t, f.transcriber.requests)
}

func TestTranscribeAudio_TrimFailure(t *testing.T) {
	f := newFixture(t, "key")
	f.media.trimErr = media.ErrEmptyMedia

	result := f.service.TranscribeAudio(context.Background(), AudioRequest{Path: "/a.mp3"}, nil)

	assert.ErrorIs(t, result.Err, media.ErrEmptyMedia)
	assert.Equal(t, model.BatchStateFailed, result.State)
	assert.Empty(t, f.transcriber.requests)
}

func TestTranscribeVideo(t *testing.T) {
	tests := []struct {
		name      string
		req       VideoRequest
		wantTrims [][2]time.Duration
		wantMsgs  []string
	}{
		{
			name:     "whole video",
			req:      VideoRequest{URL: "https://youtu.be/x", Start: time.Minute, End: 2 * time.Minute},
			wantMsgs: []string{MsgDownloading, MsgConverting, MsgTranscribing, batch.MsgComplete},
		},
		{
			name:      "enforced start only",
			req:       VideoRequest{URL: "https://youtu.be/x", Start: time.Minute, EnforceStart: true},
			wantTrims: [][2]time.Duration{{time.Minute, 0}},
			wantMsgs:  []string{MsgDownloading, MsgConverting, MsgTrimming, MsgTranscribing, batch.MsgComplete},
		},
		{
			name:      "enforced range",
			req:       VideoRequest{URL: "https://youtu.be/x", Start: time.Second, End: time.Minute, EnforceStart: true, EnforceEnd: true},
			wantTrims: [][2]time.Duration{{time.Second, time.Minute}},
			wantMsgs:  []string{MsgDownloading, MsgConverting, MsgTrimming, MsgTranscribing, batch.MsgComplete},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "key")

			result := f.service.TranscribeVideo(context.Background(), tt.req, f.onProgress)

			require.NoError(t, result.Err)
			assert.Equal(t, tt.wantTrims, f.media.trims)
			assert.Equal(t, tt.wantMsgs, f.progress)
			assert.Equal(t, []string{"video.mp4"}, f.media.extracts)

			_, err := os.Stat(filepath.Join(f.downloader.dir, "video.mp4"))
			assert.True(t, os.IsNotExist(err), "downloaded video should be removed")
			_, err = os.Stat(filepath.Join(f.dirs.Temp, "video.mp4.mp3"))
			assert.True(t, os.IsNotExist(err), "extracted audio should be removed")
		})
	}
}

func TestTranscribeVideo_Failures(t *testing.T) {
	t.Run("missing link", func(t *testing.T) {
		f := newFixture(t, "key")
		result := f.service.TranscribeVideo(context.Background(), VideoRequest{URL: "  "}, f.onProgress)
		assert.ErrorIs(t, result.Err, ErrMissingLink)
		assert.Empty(t, f.media.extracts)
	})

	t.Run("download error", func(t *testing.T) {
		f := newFixture(t, "key")
		f.downloader.err = errors.New("video unavailable")
		result := f.service.TranscribeVideo(context.Background(), VideoRequest{URL: "https://youtu.be/x"}, f.onProgress)
		assert.EqualError(t, result.Err, "video unavailable")
		assert.Equal(t, model.BatchStateFailed, result.State)
		assert.Empty(t, f.media.extracts)
		assert.Empty(t, f.transcriber.requests)
	})

	t.Run("enforced end before start", func(t *testing.T) {
		f := newFixture(t, "key")
		req := VideoRequest{URL: "https://youtu.be/x", Start: time.Minute, End: time.Second, EnforceStart: true, EnforceEnd: true}
		result := f.service.TranscribeVideo(context.Background(), req, nil)
		assert.ErrorIs(t, result.Err, ErrInvalidRange)
	})
}

func TestHandle(t *testing.T) {
	f := newFixture(t, "key")

	result := f.service.Handle(context.Background(), BatchRequest{Files: []string{"/a.wav", "/b.wav"}}, nil)
	require.NoError(t, result.Err)
	require.Len(t, f.transcriber.requests, 1)
	assert.Equal(t, f.dirs.Transcripts, f.transcriber.requests[0].DestDir)

	result = f.service.Handle(context.Background(), &AudioRequest{Path: "/a.mp3"}, nil)
	require.NoError(t, result.Err)
	assert.Len(t, f.transcriber.requests, 2)

	result = f.service.Handle(context.Background(), BatchRequest{}, nil)
	assert.Error(t, result.Err)

	result = f.service.Handle(context.Background(), unknownCommand{}, nil)
	assert.ErrorIs(t, result.Err, ErrUnsupportedCommand)
}

type unknownCommand struct{}

func (unknownCommand) Describe() string { return "unknown" }

func TestConvertVideos(t *testing.T) {
	f := newFixture(t, "key")
	videoDir := t.TempDir()
	audioDir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.MKV", "notes.txt", "broken.webm"} {
		require.NoError(t, os.WriteFile(filepath.Join(videoDir, name), []byte("v"), 0644))
	}
	f.media.extractErr = map[string]error{"broken.webm": errors.New("ffmpeg failed")}

	converted, err := f.service.ConvertVideos(context.Background(), videoDir, audioDir, nil)

	assert.EqualError(t, err, "ffmpeg failed")
	assert.Equal(t, []string{"a.MKV", "b.mp4", "broken.webm"}, f.media.extracts)
	assert.Equal(t, []string{
		filepath.Join(audioDir, "a.MKV.mp3"),
		filepath.Join(audioDir, "b.mp4.mp3"),
	}, converted)
}

func TestAudioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.wav", "a.mp3", "cover.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp3"), 0755))

	files, err := AudioFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.mp3"), filepath.Join(dir, "z.wav")}, files)

	_, err = AudioFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestVideoRequestBounds(t *testing.T) {
	req := VideoRequest{Start: time.Second, End: time.Minute}
	start, end := req.Bounds()
	assert.Zero(t, start)
	assert.Zero(t, end)
	assert.False(t, req.Trimmed())

	req.EnforceEnd = true
	start, end = req.Bounds()
	assert.Zero(t, start)
	assert.Equal(t, time.Minute, end)
	assert.True(t, req.Trimmed())
}

func TestNewSarvamFactory(t *testing.T) {
	calls := 0
	factory := NewSarvamFactory(func() SarvamOptions {
		calls++
		return SarvamOptions{Language: "hi-IN", PollInterval: time.Second}
	}, &fakeMedia{}, nil)

	first := factory("key")
	second := factory("key")

	assert.NotNil(t, first)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, calls)
}
