// Package autocrop provides the automatic content-crop hook for the process
// stage. It detects the content box of every page under <stage>/raw at
// reduced resolution, applies the binding gutter by page parity and writes
// the cropped page to <stage>/raw/done.
package autocrop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/spreads/internal/adapters/fs"
	"github.com/bft-labs/spreads/internal/adapters/imaging"
	"github.com/bft-labs/spreads/internal/app"
	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/internal/geometry"
	"github.com/bft-labs/spreads/internal/pool"
	"github.com/bft-labs/spreads/internal/ports"
	"github.com/bft-labs/spreads/pkg/log"
	"github.com/bft-labs/spreads/pkg/spreads"
)

// Name is the hook identifier and its configuration namespace.
const Name = "autocrop"

// Stage directory layout.
const (
	RawDir  = "raw"
	DoneDir = "done"
)

// Option customises the hook's collaborators.
type Option func(*Plugin)

// WithDetector replaces the configured detector.
func WithDetector(d ports.Detector) Option {
	return func(p *Plugin) { p.detector = d }
}

// WithCropper replaces the image cropper.
func WithCropper(c ports.Cropper) Option {
	return func(p *Plugin) { p.cropper = c }
}

// WithReportRepository replaces the report store. newRepo receives the
// stage directory.
func WithReportRepository(newRepo func(stageDir string) ports.ReportRepository) Option {
	return func(p *Plugin) { p.newReports = newRepo }
}

// Plugin implements spreads.Hook.
type Plugin struct {
	mu sync.RWMutex

	cfg        Config
	detector   ports.Detector
	cropper    ports.Cropper
	newReports func(stageDir string) ports.ReportRepository

	// Runtime state
	logger  log.Logger
	workers int
}

// New creates an autocrop hook. Zero-valued settings take their defaults;
// invalid ones are reported by Process before any file is touched.
func New(cfg Config, opts ...Option) *Plugin {
	p := &Plugin{
		cfg:    cfg.withDefaults(),
		logger: log.NewNop(),
		newReports: func(stageDir string) ports.ReportRepository {
			return fs.NewReportFileRepository(stageDir, fs.DefaultReportName)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return Name
}

// Config returns the effective configuration.
func (p *Plugin) Config() Config {
	return p.cfg
}

// Initialize binds the run's logger and worker hint.
func (p *Plugin) Initialize(ctx context.Context, cfg spreads.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	p.workers = p.cfg.Workers
	if p.workers == 0 {
		p.workers = cfg.Workers
	}
	return nil
}

// Shutdown implements spreads.Hook. The hook holds no resources between
// invocations.
func (p *Plugin) Shutdown(ctx context.Context) error {
	return nil
}

// Process crops every page of stageDir. It blocks until the whole batch is
// done.
//
// Configuration and directory-layout problems return an error wrapping
// domain.ErrConfiguration before any page is read. Pages that fail are
// reported together as a *domain.StagePartialFailure; pages that succeeded
// stay on disk.
func (p *Plugin) Process(ctx context.Context, stageDir string) error {
	p.mu.RLock()
	cfg, logger, workers := p.cfg, p.logger, p.workers
	p.mu.RUnlock()

	if err := cfg.Validate(); err != nil {
		return err
	}
	detector := p.detector
	if detector == nil {
		factory, _ := lookupDetector(cfg.Detector)
		detector = factory(cfg)
	}
	cropper := p.cropper
	if cropper == nil {
		cropper = imaging.NewCropper(cfg.JPEGQuality)
	}

	rawDir := filepath.Join(stageDir, RawDir)
	doneDir := filepath.Join(rawDir, DoneDir)
	if err := prepareDirs(rawDir, doneDir, cfg.CreateOutputDir); err != nil {
		return err
	}

	paths, err := listPages(rawDir)
	if err != nil {
		return err
	}
	pages := domain.EnumeratePages(paths)
	if len(pages) == 0 {
		logger.Info("no pages to crop", log.String("dir", rawDir))
		return nil
	}

	gutter := cfg.Gutter()
	tasks := make([]domain.ProcessingTask, len(pages))
	for i, page := range pages {
		tasks[i] = domain.NewTask(page, gutter, filepath.Join(doneDir, page.Name()))
	}

	logger.Info("cropping pages",
		log.Int("pages", len(tasks)),
		log.String("detector", detector.Name()),
		log.Int("gutter_odd", gutter.GutterOdd),
		log.Int("gutter_even", gutter.GutterEven),
		log.Int("extra_crop", gutter.ExtraCrop))

	w := &worker{
		detector: detector,
		cropper:  cropper,
		retries:  cfg.Retries,
		backoff:  cfg.RetryBackoff,
		logger:   logger,
	}
	started := time.Now()
	res := pool.New(workers, logger).Run(ctx, tasks, w.run)
	finished := time.Now()

	if cfg.Report {
		report := domain.NewReport(Name, detector.Name(), res, started, finished)
		if err := p.newReports(stageDir).Save(context.WithoutCancel(ctx), report); err != nil {
			logger.Warn("failed to write crop report", log.Err(err))
		}
	}

	failures := res.Failures()
	logger.Info("cropping finished",
		log.Int("pages", len(res)),
		log.Int("succeeded", res.Succeeded()),
		log.Int("failed", len(failures)),
		log.Duration("elapsed", finished.Sub(started)))

	if len(failures) > 0 {
		return &domain.StagePartialFailure{Hook: Name, Total: len(res), Failures: failures}
	}
	return nil
}

// prepareDirs checks the stage layout. The output directory is created only
// when create is set.
func prepareDirs(rawDir, doneDir string, create bool) error {
	info, err := os.Stat(rawDir)
	if err != nil {
		return fmt.Errorf("%w: input directory: %v", domain.ErrConfiguration, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrConfiguration, rawDir)
	}

	info, err = os.Stat(doneDir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("%w: %s is not a directory", domain.ErrConfiguration, doneDir)
	case errors.Is(err, os.ErrNotExist) && create:
		if err := os.MkdirAll(doneDir, 0o755); err != nil {
			return fmt.Errorf("%w: create output directory: %v", domain.ErrConfiguration, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: output directory: %v", domain.ErrConfiguration, err)
	}
}

// listPages returns the image files directly inside dir. Hidden files and
// sub-directories are skipped.
func listPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !imaging.IsPageFile(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

// worker crops a single page. It is shared read-only by all pool workers.
type worker struct {
	detector ports.Detector
	cropper  ports.Cropper
	retries  int
	backoff  time.Duration
	logger   log.Logger
}

// run implements pool.Func, retrying failed pages up to w.retries times.
func (w *worker) run(ctx context.Context, task domain.ProcessingTask) domain.Outcome {
	var b *app.Backoff
	for attempt := 1; ; attempt++ {
		out := w.crop(ctx, task)
		out.Attempts = attempt
		if out.OK() || attempt > w.retries {
			if out.Fallback != nil {
				w.logger.Warn("used fallback crop",
					log.String("page", task.Page.Name()),
					log.Err(out.Fallback))
			}
			return out
		}

		w.logger.Debug("retrying page",
			log.String("page", task.Page.Name()),
			log.Int("attempt", attempt),
			log.Err(out.Err))
		if b == nil {
			b = app.NewBackoff(w.backoff, app.DefaultBackoffMax)
		}
		if err := b.Wait(ctx); err != nil {
			return out
		}
	}
}

func (w *worker) crop(ctx context.Context, task domain.ProcessingTask) domain.Outcome {
	page := task.Page

	img, err := w.cropper.Open(page.Path)
	if err != nil {
		return domain.Outcome{Err: fmt.Errorf("%w: open %s: %v", domain.ErrWorker, page.Name(), err)}
	}
	src := ports.Source{Path: page.Path, Image: img}
	imgW, imgH := src.Size()

	var out domain.Outcome
	bbox, err := w.detector.Detect(ctx, src)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDetection):
		bbox = domain.Full(imgW, imgH)
		out.Fallback = err
	default:
		return domain.Outcome{Err: fmt.Errorf("%w: detect %s: %v", domain.ErrWorker, page.Name(), err)}
	}

	rect, err := geometry.ResolveTask(bbox, task, imgW, imgH)
	if err != nil {
		if out.Fallback == nil {
			out.Fallback = err
		}
		rect = bbox.Clamp(imgW, imgH)
	}

	if err := w.cropper.Apply(ctx, img, rect, task.OutputPath); err != nil {
		return domain.Outcome{Fallback: out.Fallback, Err: fmt.Errorf("%w: write %s: %v", domain.ErrWorker, page.Name(), err)}
	}
	out.Rect = rect
	return out
}

var _ spreads.Hook = (*Plugin)(nil)
