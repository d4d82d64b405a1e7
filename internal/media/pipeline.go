package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"
)

// ErrAssetStorageUnavailable indicates no object storage backend is configured.
var ErrAssetStorageUnavailable = errors.New("asset storage unavailable")

// AssetStorage persists uploaded media content and returns its public location.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// AssetUpdater persists pipeline status updates for videos.
type AssetUpdater interface {
	MarkAssetReady(ctx context.Context, videoID, mediaURL string, duration float64) error
	MarkAssetFailed(ctx context.Context, videoID string) error
}

// PipelineConfig controls the concurrency characteristics of the pipeline.
type PipelineConfig struct {
	QueueSize     int
	Workers       int
	UploadTimeout time.Duration
}

// Upload is a spooled media asset waiting to be pushed to object storage.
// Source points at a temporary file owned by the pipeline: the worker that
// picks the job up streams it to storage and removes it afterwards.
type Upload struct {
	VideoID  string
	Name     string
	Source   string
	Duration float64
}

// Pipeline asynchronously pushes uploaded media to object storage and records
// the outcome on the owning video. Videos stay in the pending state until a
// worker settles them.
type Pipeline struct {
	storage AssetStorage
	updater AssetUpdater
	timeout time.Duration
	logger  *slog.Logger

	jobs   chan Upload
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var errPipelineClosed = errors.New("media pipeline closed")

// NewPipeline constructs a background worker pool that persists media assets.
func NewPipeline(storage AssetStorage, updater AssetUpdater, cfg PipelineConfig, logger *slog.Logger) *Pipeline {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pipeline{
		storage: storage,
		updater: updater,
		timeout: cfg.UploadTimeout,
		logger:  logger,
		jobs:    make(chan Upload, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.worker()
	}

	return p
}

// Enqueue schedules asset persistence for the supplied upload.
func (p *Pipeline) Enqueue(ctx context.Context, upload Upload) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return errPipelineClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return errPipelineClosed
	case p.jobs <- upload:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.once.Do(func() {
		p.cancel()
		close(p.jobs)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	for job := range p.jobs {
		p.handleJob(job)
	}
}

func (p *Pipeline) handleJob(job Upload) {
	defer p.removeSpool(job.Source)

	if p.updater == nil {
		p.logger.Error("media pipeline has no status updater", "videoId", job.VideoID)
		return
	}

	key := path.Join(job.VideoID, strings.TrimLeft(job.Name, "/"))
	if strings.TrimSpace(key) == "" || job.Source == "" {
		p.logger.Error("media pipeline received empty upload", "videoId", job.VideoID)
		p.recordFailure(job.VideoID)
		return
	}

	// Without a storage backend the asset can never become ready; settle it
	// instead of leaving the video pending forever.
	if p.storage == nil {
		p.logger.Error("no asset storage configured", "videoId", job.VideoID)
		p.recordFailure(job.VideoID)
		return
	}

	file, err := os.Open(job.Source)
	if err != nil {
		p.logger.Error("open spooled upload", "videoId", job.VideoID, "path", job.Source, "error", err)
		p.recordFailure(job.VideoID)
		return
	}
	defer file.Close()

	if info, err := file.Stat(); err != nil || info.Size() == 0 {
		p.logger.Error("media pipeline received empty upload", "videoId", job.VideoID, "error", err)
		p.recordFailure(job.VideoID)
		return
	}

	uploadCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	location, err := p.storage.Save(uploadCtx, key, file)
	if err != nil {
		p.logger.Error("media upload failed", "videoId", job.VideoID, "key", key, "error", err)
		p.recordFailure(job.VideoID)
		return
	}

	if err := p.recordSuccess(job.VideoID, location, job.Duration); err != nil {
		p.logger.Error("mark asset ready", "videoId", job.VideoID, "error", err)
		p.recordFailure(job.VideoID)
	}
}

func (p *Pipeline) removeSpool(source string) {
	if source == "" {
		return
	}
	if err := os.Remove(source); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Warn("remove spooled upload", "path", source, "error", err)
	}
}

func (p *Pipeline) recordFailure(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.updater.MarkAssetFailed(ctx, videoID); err != nil {
		p.logger.Error("record asset failure", "videoId", videoID, "error", err)
	}
}

func (p *Pipeline) recordSuccess(videoID, location string, duration float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.updater.MarkAssetReady(ctx, videoID, location, duration)
}
