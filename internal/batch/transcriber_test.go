package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/media-magic/internal/media"
	"github.com/ytget/media-magic/internal/model"
	"github.com/ytget/media-magic/internal/storage"
)

const (
	inputSAS  = "https://acct.blob.core.windows.net/jobs/j-1/in?sig=in"
	outputSAS = "https://acct.blob.core.windows.net/jobs/j-1/out?sig=out"
)

type fakeJobs struct {
	mu          sync.Mutex
	initErr     error
	startErr    error
	states      []model.JobState
	statusErrAt int // 1-based status call that fails, 0 never
	details     []model.JobDetail

	initCalls   int
	startCalls  int
	statusCalls int
}

func (f *fakeJobs) InitializeJob(ctx context.Context) (*model.TranscriptionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &model.TranscriptionJob{JobID: "j-1", InputStoragePath: inputSAS, OutputStoragePath: outputSAS}, nil
}

func (f *fakeJobs) StartJob(ctx context.Context, jobID string) (*model.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &model.JobStatus{JobID: jobID, State: model.JobStateAccepted}, nil
}

func (f *fakeJobs) CheckJobStatus(ctx context.Context, jobID string) (*model.JobStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	call := f.statusCalls
	f.mu.Unlock()

	if f.statusErrAt == call {
		return nil, errors.New("502 bad gateway")
	}

	idx := call - 1
	if idx >= len(f.states) {
		idx = len(f.states) - 1
	}
	return &model.JobStatus{JobID: jobID, State: f.states[idx], Details: f.details}, nil
}

type fakeStore struct {
	mu            sync.Mutex
	failUpload    map[string]bool
	uploaded      []string
	uploadSAS     string
	outputs       map[string]string
	listCalls     int
	downloadCalls int
	downloaded    []string
	downloadErr   error
	onDownload    func()
}

func (f *fakeStore) Upload(ctx context.Context, sasURL string, paths []string) ([]storage.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadSAS = sasURL
	results := make([]storage.Result, 0, len(paths))
	for _, p := range paths {
		r := storage.Result{Name: filepath.Base(p), Path: p}
		if f.failUpload[filepath.Base(p)] {
			r.Err = errors.New("upload failed")
		} else {
			f.uploaded = append(f.uploaded, filepath.Base(p))
		}
		results = append(results, r)
	}
	return results, nil
}

func (f *fakeStore) List(ctx context.Context, sasURL string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	names := make([]string, 0, len(f.outputs))
	for name := range f.outputs {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeStore) Download(ctx context.Context, sasURL string, names []string, destDir string) ([]storage.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadCalls++
	if f.onDownload != nil {
		f.onDownload()
	}
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}
	var results []storage.Result
	for _, name := range names {
		local := filepath.Join(destDir, name)
		err := os.WriteFile(local, []byte(f.outputs[name]), 0644)
		f.downloaded = append(f.downloaded, name)
		results = append(results, storage.Result{Name: name, Path: local, Err: err})
	}
	return results, nil
}

type fakeSplitter struct {
	durations map[string]time.Duration
}

func (f *fakeSplitter) Probe(ctx context.Context, path string) (media.Info, error) {
	d, ok := f.durations[filepath.Base(path)]
	if !ok {
		return media.Info{}, fmt.Errorf("cannot decode %s", path)
	}
	return media.Info{Path: path, Duration: d, Extension: filepath.Ext(path)}, nil
}

func (f *fakeSplitter) Split(ctx context.Context, src string, chunk time.Duration, destDir string) ([]model.AudioChunk, error) {
	info, err := f.Probe(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}
	chunks := media.PlanChunks(info.Duration, chunk)
	for i := range chunks {
		chunks[i].Path = filepath.Join(destDir, media.ChunkFileName(src, i))
		if err := os.WriteFile(chunks[i].Path, []byte("wav"), 0644); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) add(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func transcriptJSON(text string) string {
	return fmt.Sprintf(`{"request_id":"r","transcript":%q,"language_code":"gu-IN"}`, text)
}

func TestRun_EndToEnd(t *testing.T) {
	dest := t.TempDir()
	work := t.TempDir()

	jobs := &fakeJobs{
		states: []model.JobState{model.JobStatePending, model.JobStateRunning, model.JobStateCompleted},
		details: []model.JobDetail{
			{FileID: "0", FileName: "a.mp3"},
			{FileID: "1", FileName: "b.mp3"},
			{FileID: "2", FileName: "long_chunk_1.wav"},
			{FileID: "3", FileName: "long_chunk_2.wav"},
		},
	}
	store := &fakeStore{outputs: map[string]string{
		"0.json": transcriptJSON("alpha"),
		"1.json": transcriptJSON("beta"),
		"2.json": transcriptJSON("gamma"),
		"3.json": transcriptJSON("delta"),
	}}
	splitter := &fakeSplitter{durations: map[string]time.Duration{
		"a.mp3":    5 * time.Minute,
		"b.mp3":    10 * time.Minute,
		"long.mp3": 15 * time.Minute,
	}}

	transcriber := New(jobs, store, splitter,
		WithPollInterval(time.Millisecond),
		WithChunkDuration(10*time.Minute),
		WithWorkDir(work))

	rec := &recorder{}
	result := transcriber.Run(context.Background(), Request{
		Files:      []string{"/in/a.mp3", "/in/b.mp3", "/in/long.mp3"},
		DestDir:    dest,
		OnProgress: rec.add,
	})

	require.NoError(t, result.Err)
	assert.Equal(t, model.BatchStateCompleted, result.State)
	assert.Equal(t, "j-1", result.JobID)
	assert.Equal(t, inputSAS, store.uploadSAS)
	assert.ElementsMatch(t, []string{"a.mp3", "b.mp3", "long_chunk_1.wav", "long_chunk_2.wav"}, store.uploaded)
	assert.Len(t, result.Uploaded, 4)

	assert.Equal(t, 1, store.listCalls)
	assert.Equal(t, 1, store.downloadCalls)
	assert.Len(t, store.downloaded, 4)

	expected := map[string]string{"a.txt": "alpha", "b.txt": "beta", "long_chunk_1.txt": "gamma", "long_chunk_2.txt": "delta"}
	assert.Len(t, result.Transcripts, 4)
	for name, text := range expected {
		data, err := os.ReadFile(filepath.Join(dest, name))
		require.NoError(t, err, name)
		assert.Equal(t, text, string(data))
	}
	jsonLeft, _ := filepath.Glob(filepath.Join(dest, "*.json"))
	assert.Empty(t, jsonLeft)

	chunksLeft, _ := filepath.Glob(filepath.Join(work, "*.wav"))
	assert.Empty(t, chunksLeft, "chunk files should be cleaned up")

	assert.Equal(t, []string{
		MsgUploading,
		MsgStarting,
		"Job status: Pending",
		"Job status: Running",
		"Job status: Completed",
		MsgDownloading,
		MsgComplete,
	}, rec.all())
}

func TestRun_InitFailureUploadsNothing(t *testing.T) {
	jobs := &fakeJobs{initErr: errors.New("401 invalid key")}
	store := &fakeStore{}
	rec := &recorder{}

	result := New(jobs, store, &fakeSplitter{}).Run(context.Background(), Request{
		Files:      []string{"/in/a.mp3"},
		DestDir:    t.TempDir(),
		OnProgress: rec.add,
	})

	assert.Equal(t, model.BatchStateFailed, result.State)
	assert.ErrorIs(t, result.Err, ErrInitFailed)
	assert.Empty(t, store.uploaded)
	assert.Equal(t, 0, jobs.startCalls)
	assert.Equal(t, []string{MsgInitFailed}, rec.all())
}

func TestRun_SingleUploadFailureStillStartsJob(t *testing.T) {
	jobs := &fakeJobs{states: []model.JobState{model.JobStateCompleted}}
	store := &fakeStore{failUpload: map[string]bool{"b.mp3": true}, outputs: map[string]string{}}
	splitter := &fakeSplitter{durations: map[string]time.Duration{"a.mp3": time.Minute, "b.mp3": time.Minute}}

	result := New(jobs, store, splitter, WithPollInterval(time.Millisecond)).Run(context.Background(), Request{
		Files:   []string{"/in/a.mp3", "/in/b.mp3"},
		DestDir: t.TempDir(),
	})

	assert.Equal(t, model.BatchStateCompleted, result.State)
	assert.Equal(t, 1, jobs.startCalls)
	assert.Equal(t, []string{"/in/a.mp3"}, result.Uploaded)
}

func TestRun_UnprobeableFileUploadedWhole(t *testing.T) {
	jobs := &fakeJobs{states: []model.JobState{model.JobStateCompleted}}
	store := &fakeStore{outputs: map[string]string{}}

	New(jobs, store, &fakeSplitter{}, WithPollInterval(time.Millisecond)).Run(context.Background(), Request{
		Files:   []string{"/in/weird.ogg"},
		DestDir: t.TempDir(),
	})

	assert.Equal(t, []string{"weird.ogg"}, store.uploaded)
}

func TestRun_StartFailure(t *testing.T) {
	jobs := &fakeJobs{startErr: errors.New("400")}
	store := &fakeStore{}
	rec := &recorder{}

	result := New(jobs, store, &fakeSplitter{}).Run(context.Background(), Request{DestDir: t.TempDir(), OnProgress: rec.add})

	assert.Equal(t, model.BatchStateFailed, result.State)
	assert.ErrorIs(t, result.Err, ErrStartFailed)
	assert.Equal(t, 0, jobs.statusCalls)
	assert.Equal(t, []string{MsgUploading, MsgStarting, MsgStartFailed}, rec.all())
}

func TestRun_StatusQueryFailureIsExplicitFailure(t *testing.T) {
	jobs := &fakeJobs{states: []model.JobState{model.JobStateRunning}, statusErrAt: 2}
	store := &fakeStore{outputs: map[string]string{"0.json": transcriptJSON("x")}}
	rec := &recorder{}

	result := New(jobs, store, &fakeSplitter{}, WithPollInterval(time.Millisecond)).Run(context.Background(), Request{
		DestDir:    t.TempDir(),
		OnProgress: rec.add,
	})

	assert.Equal(t, model.BatchStateFailed, result.State)
	assert.ErrorIs(t, result.Err, ErrStatusFailed)
	assert.Equal(t, 0, store.listCalls)
	msgs := rec.all()
	assert.Equal(t, MsgStatusFailed, msgs[len(msgs)-1])
}

func TestRun_RemoteFailureSkipsDownload(t *testing.T) {
	jobs := &fakeJobs{states: []model.JobState{model.JobStateRunning, model.JobStateFailed}}
	store := &fakeStore{outputs: map[string]string{"0.json": transcriptJSON("x")}}
	rec := &recorder{}

	result := New(jobs, store, &fakeSplitter{}, WithPollInterval(time.Millisecond)).Run(context.Background(), Request{
		DestDir:    t.TempDir(),
		OnProgress: rec.add,
	})

	assert.Equal(t, model.BatchStateFailed, result.State)
	assert.ErrorIs(t, result.Err, ErrJobFailed)
	assert.Equal(t, 0, store.listCalls)
	assert.Equal(t, 0, store.downloadCalls)
	msgs := rec.all()
	assert.Equal(t, []string{"Job status: Failed", MsgJobFailed}, msgs[len(msgs)-2:])
}

func TestRun_CancelDuringPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := &fakeJobs{states: []model.JobState{model.JobStateRunning}}
	store := &fakeStore{}
	rec := &recorder{}

	done := make(chan Result, 1)
	go func() {
		done <- New(jobs, store, &fakeSplitter{}, WithPollInterval(time.Hour)).Run(ctx, Request{DestDir: t.TempDir(), OnProgress: rec.add})
	}()

	// first poll sleeps for an hour; cancelling must wake it
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case result := <-done:
		assert.Equal(t, model.BatchStateFailed, result.State)
		assert.ErrorIs(t, result.Err, context.Canceled)
		msgs := rec.all()
		assert.Equal(t, MsgCancelled, msgs[len(msgs)-1])
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_CancelDuringDownload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dest := t.TempDir()
	jobs := &fakeJobs{
		states:  []model.JobState{model.JobStateCompleted},
		details: []model.JobDetail{{FileID: "0", FileName: "a.mp3"}},
	}
	store := &fakeStore{outputs: map[string]string{"0.json": transcriptJSON("alpha")}, onDownload: cancel}
	rec := &recorder{}

	result := New(jobs, store, &fakeSplitter{}, WithPollInterval(time.Millisecond)).Run(ctx, Request{
		Files:      []string{"/in/a.mp3"},
		DestDir:    dest,
		OnProgress: rec.add,
	})

	assert.Equal(t, model.BatchStateFailed, result.State)
	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.Empty(t, result.Transcripts)
	msgs := rec.all()
	assert.NotContains(t, msgs, MsgComplete)
	assert.Equal(t, MsgCancelled, msgs[len(msgs)-1])

	txt, _ := filepath.Glob(filepath.Join(dest, "*.txt"))
	assert.Empty(t, txt)
}

func TestRun_DownloadFailure(t *testing.T) {
	jobs := &fakeJobs{states: []model.JobState{model.JobStateCompleted}}
	store := &fakeStore{outputs: map[string]string{}, downloadErr: errors.New("invalid SAS URL")}
	rec := &recorder{}

	result := New(jobs, store, &fakeSplitter{}, WithPollInterval(time.Millisecond)).Run(context.Background(), Request{
		Files:      []string{"/in/a.mp3"},
		DestDir:    t.TempDir(),
		OnProgress: rec.add,
	})

	assert.Equal(t, model.BatchStateFailed, result.State)
	assert.Error(t, result.Err)
	msgs := rec.all()
	assert.Equal(t, MsgDownloadFailed, msgs[len(msgs)-1])
	assert.NotContains(t, msgs, MsgListFailed)
}

func TestRun_SameBaseNameChunksDoNotCollide(t *testing.T) {
	work := t.TempDir()
	jobs := &fakeJobs{states: []model.JobState{model.JobStateCompleted}}
	store := &fakeStore{outputs: map[string]string{}}
	splitter := &fakeSplitter{durations: map[string]time.Duration{"talk.mp3": 15 * time.Minute}}

	result := New(jobs, store, splitter,
		WithPollInterval(time.Millisecond),
		WithChunkDuration(10*time.Minute),
		WithWorkDir(work)).Run(context.Background(), Request{
		Files:   []string{"/day1/talk.mp3", "/day2/talk.mp3"},
		DestDir: t.TempDir(),
	})

	require.NoError(t, result.Err)
	assert.ElementsMatch(t, []string{
		"talk_chunk_1.wav", "talk_chunk_2.wav",
		"2_talk_chunk_1.wav", "2_talk_chunk_2.wav",
	}, store.uploaded)
	for _, path := range result.Uploaded {
		assert.Equal(t, work, filepath.Dir(path))
	}

	left, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, left, "chunks and scratch directories should be cleaned up")
}

func TestConvertTranscripts(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("result.json", `{"transcript": "hello"}`)
	write("7.json", `{"transcript": "unmapped"}`)
	write("empty.json", `{"language_code": "gu-IN"}`)
	write("broken.json", `{not json`)
	write("notes.md", `ignored`)

	written, err := ConvertTranscripts(dir, map[string]string{"result": "clip1.wav"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "7.txt"), filepath.Join(dir, "clip1.txt")}, written)

	data, err := os.ReadFile(filepath.Join(dir, "clip1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = os.Stat(filepath.Join(dir, "result.json"))
	assert.True(t, os.IsNotExist(err), "converted JSON must be removed")

	for _, kept := range []string{"empty.json", "broken.json", "notes.md"} {
		_, err := os.Stat(filepath.Join(dir, kept))
		assert.NoError(t, err, kept)
	}
}

func TestConvertOne_EmptyTranscript(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "0.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"transcript": ""}`), 0644))

	err := convertOne(src, filepath.Join(dir, "0.txt"))
	assert.ErrorIs(t, err, errNoTranscript)
	_, statErr := os.Stat(filepath.Join(dir, "0.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvertTranscripts_MissingDir(t *testing.T) {
	_, err := ConvertTranscripts(filepath.Join(t.TempDir(), "absent"), nil, nil)
	assert.Error(t, err)
}
