package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeStorage struct {
	mu    sync.Mutex
	saved map[string][]byte
	fail  bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if s.fail {
		return "", errors.New("storage offline")
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.saved[name] = content
	s.mu.Unlock()
	return "https://cdn.example.com/" + name, nil
}

type statusRecorder struct {
	mu      sync.Mutex
	ready   map[string]string
	failed  map[string]bool
	settled chan string
}

func newStatusRecorder() *statusRecorder {
	return &statusRecorder{
		ready:   make(map[string]string),
		failed:  make(map[string]bool),
		settled: make(chan string, 16),
	}
}

func (r *statusRecorder) MarkAssetReady(_ context.Context, videoID, mediaURL string, _ float64) error {
	r.mu.Lock()
	r.ready[videoID] = mediaURL
	r.mu.Unlock()
	r.settled <- videoID
	return nil
}

func (r *statusRecorder) MarkAssetFailed(_ context.Context, videoID string) error {
	r.mu.Lock()
	r.failed[videoID] = true
	r.mu.Unlock()
	r.settled <- videoID
	return nil
}

func waitSettled(t *testing.T, recorder *statusRecorder, videoID string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case id := <-recorder.settled:
			if id == videoID {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for video %s to settle", videoID)
		}
	}
}

func spoolUpload(t *testing.T, content []byte) string {
	t.Helper()
	source := filepath.Join(t.TempDir(), "upload.bin")
	if err := os.WriteFile(source, content, 0o600); err != nil {
		t.Fatalf("spool upload: %v", err)
	}
	return source
}

func waitRemoved(t *testing.T, source string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(source); errors.Is(err, os.ErrNotExist) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("spooled upload %s was not cleaned up", source)
}

func TestPipelineMarksAssetReady(t *testing.T) {
	storage := newFakeStorage()
	recorder := newStatusRecorder()
	pipeline := NewPipeline(storage, recorder, PipelineConfig{Workers: 1}, nil)
	defer pipeline.Shutdown(context.Background())

	source := spoolUpload(t, []byte("media-bytes"))
	upload := Upload{
		VideoID:  "video-1",
		Name:     "clip.mp4",
		Source:   source,
		Duration: 12.5,
	}
	if err := pipeline.Enqueue(context.Background(), upload); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitSettled(t, recorder, "video-1")

	recorder.mu.Lock()
	location := recorder.ready["video-1"]
	recorder.mu.Unlock()

	if !strings.HasSuffix(location, "video-1/clip.mp4") {
		t.Fatalf("unexpected media location %q", location)
	}

	storage.mu.Lock()
	content := storage.saved["video-1/clip.mp4"]
	storage.mu.Unlock()
	if string(content) != "media-bytes" {
		t.Fatalf("unexpected stored content %q", content)
	}

	// The worker owns the spooled file and deletes it once the job settles.
	waitRemoved(t, source)
}

func TestPipelineMarksAssetFailedOnStorageError(t *testing.T) {
	storage := newFakeStorage()
	storage.fail = true
	recorder := newStatusRecorder()
	pipeline := NewPipeline(storage, recorder, PipelineConfig{Workers: 1}, nil)
	defer pipeline.Shutdown(context.Background())

	upload := Upload{VideoID: "video-2", Name: "clip.mp4", Source: spoolUpload(t, []byte("media"))}
	if err := pipeline.Enqueue(context.Background(), upload); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitSettled(t, recorder, "video-2")

	recorder.mu.Lock()
	failed := recorder.failed["video-2"]
	recorder.mu.Unlock()
	if !failed {
		t.Fatalf("expected video-2 to be marked failed")
	}
}

func TestPipelineMarksAssetFailedWithoutStorage(t *testing.T) {
	recorder := newStatusRecorder()
	pipeline := NewPipeline(nil, recorder, PipelineConfig{Workers: 1}, nil)
	defer pipeline.Shutdown(context.Background())

	source := spoolUpload(t, []byte("media"))
	if err := pipeline.Enqueue(context.Background(), Upload{VideoID: "video-4", Name: "clip.mp4", Source: source}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitSettled(t, recorder, "video-4")

	recorder.mu.Lock()
	failed := recorder.failed["video-4"]
	recorder.mu.Unlock()
	if !failed {
		t.Fatal("expected upload without a storage backend to settle as failed")
	}
	waitRemoved(t, source)
}

func TestPipelineRejectsEmptyUpload(t *testing.T) {
	storage := newFakeStorage()
	recorder := newStatusRecorder()
	pipeline := NewPipeline(storage, recorder, PipelineConfig{Workers: 1}, nil)
	defer pipeline.Shutdown(context.Background())

	if err := pipeline.Enqueue(context.Background(), Upload{VideoID: "video-3", Name: "clip.mp4", Source: spoolUpload(t, nil)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitSettled(t, recorder, "video-3")

	recorder.mu.Lock()
	failed := recorder.failed["video-3"]
	recorder.mu.Unlock()
	if !failed {
		t.Fatalf("expected empty upload to be marked failed")
	}
}

func TestPipelineShutdownDrainsQueue(t *testing.T) {
	storage := newFakeStorage()
	recorder := newStatusRecorder()
	pipeline := NewPipeline(storage, recorder, PipelineConfig{QueueSize: 8, Workers: 2}, nil)

	for i := 0; i < 4; i++ {
		upload := Upload{
			VideoID: string(rune('a' + i)),
			Name:    "clip.mp4",
			Source:  spoolUpload(t, []byte("media")),
		}
		if err := pipeline.Enqueue(context.Background(), upload); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pipeline.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	recorder.mu.Lock()
	settled := len(recorder.ready) + len(recorder.failed)
	recorder.mu.Unlock()
	if settled != 4 {
		t.Fatalf("expected 4 settled uploads after shutdown, got %d", settled)
	}

	if err := pipeline.Enqueue(context.Background(), Upload{VideoID: "late"}); !errors.Is(err, errPipelineClosed) {
		t.Fatalf("expected enqueue after shutdown to fail, got %v", err)
	}
}
