package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/model"
)

// Download constants
const (
	TaskIDPrefix        = "task-"
	VideoExtension      = ".mp4"
	DefaultMaxParallel  = 2
	MaxParallelLimit    = 10
	MaxTitleFileNameLen = 120
)

// ErrEmptyDownload is returned when the downloaded file is missing or empty
var ErrEmptyDownload = errors.New("downloaded file is empty")

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]+`)

// Service handles download operations
type Service struct {
	tasks       map[string]*model.DownloadTask
	tasksMutex  sync.RWMutex
	maxParallel int
	downloadDir string
	fetcher     videoFetcher
	onUpdate    func(*model.DownloadTask) // callback for UI updates
	log         logger.Logger
}

// NewService creates a new download service
func NewService(downloadDir string, maxParallel int, log logger.Logger) *Service {
	s := &Service{
		tasks:       make(map[string]*model.DownloadTask),
		downloadDir: downloadDir,
		fetcher:     ytdlpFetcher{quality: DefaultQuality, ext: DefaultExtension},
		log:         logger.OrNop(log),
	}
	s.SetMaxParallelDownloads(maxParallel)
	return s
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.DownloadTask)) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()
	s.onUpdate = callback
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Service) SetMaxParallelDownloads(max int) {
	if max < 1 {
		max = 1
	}
	if max > MaxParallelLimit {
		max = MaxParallelLimit
	}
	s.tasksMutex.Lock()
	s.maxParallel = max
	s.tasksMutex.Unlock()
}

// SetDownloadDirectory sets the download directory
func (s *Service) SetDownloadDirectory(dir string) {
	s.tasksMutex.Lock()
	s.downloadDir = dir
	s.tasksMutex.Unlock()
}

// Download fetches one video and blocks until it finished
func (s *Service) Download(ctx context.Context, url string) (*model.DownloadTask, error) {
	task, err := s.addTask(url)
	if err != nil {
		return nil, err
	}
	if err := s.run(ctx, task); err != nil {
		return task, err
	}
	return task, nil
}

// DownloadAll fetches urls with at most maxParallel downloads at a time.
// Failed downloads are reported through each task's status.
func (s *Service) DownloadAll(ctx context.Context, urls []string) []*model.DownloadTask {
	s.tasksMutex.RLock()
	sem := make(chan struct{}, s.maxParallel)
	s.tasksMutex.RUnlock()

	tasks := make([]*model.DownloadTask, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		task, err := s.addTask(url)
		if err != nil {
			s.log.Warn(ctx, "Skipping %s: %v", url, err)
			continue
		}
		tasks[i] = task

		wg.Add(1)
		go func(task *model.DownloadTask) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				s.finish(task, ctx.Err())
				return
			}
			defer func() { <-sem }()
			if err := s.run(ctx, task); err != nil {
				s.log.Error(ctx, "Download of %s failed: %v", task.URL, err)
			}
		}(task)
	}
	wg.Wait()

	out := tasks[:0]
	for _, task := range tasks {
		if task != nil {
			out = append(out, task)
		}
	}
	return out
}

// GetTask returns a task by ID
func (s *Service) GetTask(id string) (*model.DownloadTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	return task, exists
}

// GetAllTasks returns all tasks
func (s *Service) GetAllTasks() []*model.DownloadTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.DownloadTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	return tasks
}

// addTask registers a new pending task, rejecting URLs that are already in flight
func (s *Service) addTask(url string) (*model.DownloadTask, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("empty URL")
	}

	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	for _, task := range s.tasks {
		if task.URL == url && !task.Status.IsFinished() {
			return nil, fmt.Errorf("task already exists for URL: %s", url)
		}
	}

	task := &model.DownloadTask{
		ID:        generateTaskID(),
		URL:       url,
		Status:    model.TaskStatusPending,
		StartedAt: time.Now(),
	}
	s.tasks[task.ID] = task
	return task, nil
}

// run performs the download of one task
func (s *Service) run(ctx context.Context, task *model.DownloadTask) error {
	s.tasksMutex.Lock()
	task.Status = model.TaskStatusStarting
	dir := s.downloadDir
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)

	if err := os.MkdirAll(dir, 0755); err != nil {
		err = fmt.Errorf("failed to create download directory: %w", err)
		s.finish(task, err)
		return err
	}

	outputPath := filepath.Join(dir, task.ID+VideoExtension)

	s.tasksMutex.Lock()
	task.Status = model.TaskStatusRunning
	task.OutputPath = outputPath
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)

	s.log.Info(ctx, "Downloading %s to %s", task.URL, outputPath)
	title, err := s.fetcher.Fetch(ctx, task.URL, outputPath, func(percent float64) {
		s.updateTaskProgress(task, percent)
	})
	if err == nil {
		err = checkOutput(outputPath)
	}
	if err != nil {
		os.Remove(outputPath)
		s.finish(task, err)
		return fmt.Errorf("failed to download %s: %w", task.URL, err)
	}

	s.tasksMutex.Lock()
	task.Title = title
	s.tasksMutex.Unlock()

	if renamed, ok := renameToTitle(outputPath, title); ok {
		s.tasksMutex.Lock()
		task.OutputPath = renamed
		s.tasksMutex.Unlock()
	}

	s.finish(task, nil)
	s.log.Info(ctx, "Downloaded %s (%s)", task.URL, title)
	return nil
}

// updateTaskProgress updates task progress from a percentage in [0,100]
func (s *Service) updateTaskProgress(task *model.DownloadTask, percent float64) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	s.tasksMutex.Lock()
	task.Percent = int(percent)
	task.Progress = percent / 100.0
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// finish moves the task into its final status
func (s *Service) finish(task *model.DownloadTask, err error) {
	s.tasksMutex.Lock()
	switch {
	case err == nil:
		task.Status = model.TaskStatusCompleted
		task.Progress = 1.0
		task.Percent = 100
		if info, statErr := os.Stat(task.OutputPath); statErr == nil {
			task.FileSize = info.Size()
		}
	case errors.Is(err, context.Canceled):
		task.Status = model.TaskStatusStopped
	default:
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
	}
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.DownloadTask) {
	s.tasksMutex.RLock()
	callback := s.onUpdate
	s.tasksMutex.RUnlock()
	if callback != nil {
		callback(task)
	}
}

func checkOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return ErrEmptyDownload
	}
	return nil
}

// renameToTitle moves the download to "<title>.mp4" when that name is free
func renameToTitle(path, title string) (string, bool) {
	name := SanitizeFileName(title)
	if name == "" {
		return path, false
	}
	target := filepath.Join(filepath.Dir(path), name+VideoExtension)
	if _, err := os.Stat(target); err == nil {
		return path, false
	}
	if err := os.Rename(path, target); err != nil {
		return path, false
	}
	return target, true
}

// SanitizeFileName turns a video title into a portable file name
func SanitizeFileName(title string) string {
	name := unsafeFileChars.ReplaceAllString(title, "_")
	name = strings.Trim(strings.Join(strings.Fields(name), " "), " ._")
	if runes := []rune(name); len(runes) > MaxTitleFileNameLen {
		name = strings.TrimSpace(string(runes[:MaxTitleFileNameLen]))
	}
	return name
}

// generateTaskID generates a unique task ID using UUID v7 for time ordering
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
