// Package batch fuses every page of a dataset: it finds the page images,
// reads the layout and content responses stored next to them, and writes
// one fused document per page.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/config"
	"github.com/vegarsti/fuse/csv"
	"github.com/vegarsti/fuse/html"
	"github.com/vegarsti/fuse/image"
	"github.com/vegarsti/fuse/xlsx"
)

// Summary counts what a run did with each page.
type Summary struct {
	RunID string
	// Total is the number of page images found.
	Total   int
	Written int
	// Cached counts the written documents that came from the cache.
	Cached  int
	Skipped int
	Failed  int
	Elapsed time.Duration
}

type status int

const (
	statusWritten status = iota
	statusCached
	statusSkipped
	statusFailed
)

// Driver runs batches for one configuration.
type Driver struct {
	cfg      *config.Config
	store    Store
	cache    Cache
	logger   *slog.Logger
	settings Settings
}

type Option func(*Driver)

// WithCache serves documents whose inputs are unchanged from c and stores
// newly fused ones in it.
func WithCache(c Cache) Option {
	return func(d *Driver) {
		d.cache = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// New returns a Driver for a valid cfg.
func New(cfg *config.Config, store Store, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	visionOpts, err := cfg.VisionOptions()
	if err != nil {
		return nil, err
	}
	d := &Driver{
		cfg:   cfg,
		store: store,
		settings: Settings{
			Fuse:   cfg.FuseOptions(),
			Vision: visionOpts,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d, nil
}

// Run fuses every page. Pages with a missing input are skipped. A page that
// fails does not stop the others; the failures are returned joined once all
// pages are done.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: uuid.NewString()}
	logger := d.logger.With("run_id", summary.RunID)

	names, err := d.pages(ctx)
	if err != nil {
		return nil, err
	}
	summary.Total = len(names)
	logger.Info("batch started", "pages", len(names), "workers", d.cfg.Workers)

	var written, cached, skipped, failed atomic.Int64
	docs := make([]*fuse.Document, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(d.cfg.Workers)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = fmt.Errorf("%s: %w", name, err)
				failed.Add(1)
				return nil
			}
			doc, st, err := d.process(ctx, logger.With("page", name), name)
			switch st {
			case statusWritten:
				written.Add(1)
			case statusCached:
				written.Add(1)
				cached.Add(1)
			case statusSkipped:
				skipped.Add(1)
			case statusFailed:
				failed.Add(1)
				errs[i] = fmt.Errorf("%s: %w", name, err)
			}
			docs[i] = doc
			return nil
		})
	}
	_ = g.Wait()

	summary.Written = int(written.Load())
	summary.Cached = int(cached.Load())
	summary.Skipped = int(skipped.Load())
	summary.Failed = int(failed.Load())

	if d.cfg.Report != "" {
		if err := d.writeReport(ctx, docs); err != nil {
			errs = append(errs, err)
		}
	}

	summary.Elapsed = time.Since(start)
	logger.Info("batch finished",
		"written", summary.Written,
		"cached", summary.Cached,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"elapsed_ms", summary.Elapsed.Milliseconds(),
	)
	return summary, errors.Join(errs...)
}

// pages returns the sorted names of the page images.
func (d *Driver) pages(ctx context.Context) ([]string, error) {
	entries, err := d.store.List(ctx, d.cfg.ImageDir)
	if err != nil {
		return nil, fmt.Errorf("unable to list pages: %w", err)
	}
	var names []string
	for _, name := range entries {
		ext := strings.ToLower(path.Ext(name))
		for _, want := range d.cfg.ImageExtensions {
			if ext == strings.ToLower(want) {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func baseName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func (d *Driver) process(ctx context.Context, logger *slog.Logger, name string) (*fuse.Document, status, error) {
	base := baseName(name)
	layout, err := d.store.Read(ctx, path.Join(d.cfg.LayoutDir, base+d.cfg.LayoutSuffix))
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("layout input missing, skipping page")
		return nil, statusSkipped, nil
	}
	if err != nil {
		logger.Error("unable to read layout input", "error", err)
		return nil, statusFailed, err
	}
	content, err := d.store.Read(ctx, path.Join(d.cfg.ContentDir, base+d.cfg.ContentSuffix))
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("content input missing, skipping page")
		return nil, statusSkipped, nil
	}
	if err != nil {
		logger.Error("unable to read content input", "error", err)
		return nil, statusFailed, err
	}

	src := fuse.NewSource(name, layout, content)
	checksum := src.Checksum(d.settings.String())
	doc, data := d.cached(ctx, logger, checksum)
	st := statusCached
	if doc == nil {
		st = statusWritten
		doc, err = Build(src, d.settings)
		if err != nil {
			logger.Error("unable to fuse page", "error", err)
			return nil, statusFailed, err
		}
		data, err = Encode(doc)
		if err != nil {
			logger.Error("fused document is invalid", "error", err)
			return nil, statusFailed, err
		}
	}

	if err := d.writeOutputs(ctx, name, doc, data); err != nil {
		logger.Error("unable to write outputs", "error", err)
		return nil, statusFailed, err
	}
	if st == statusWritten && d.cache != nil {
		if err := d.cache.Put(ctx, checksum, data); err != nil {
			logger.Warn("unable to cache document", "error", err)
		}
	}
	logger.Debug("page fused",
		"regions", len(doc.Regions),
		"tokens", doc.TokenCount,
		"cached", st == statusCached,
	)
	return doc, st, nil
}

// cached returns the cached document for checksum. Cache errors are logged
// and treated as a miss.
func (d *Driver) cached(ctx context.Context, logger *slog.Logger, checksum string) (*fuse.Document, []byte) {
	if d.cache == nil {
		return nil, nil
	}
	data, err := d.cache.Get(ctx, checksum)
	if err != nil {
		logger.Warn("unable to read cache", "error", err)
		return nil, nil
	}
	if data == nil {
		return nil, nil
	}
	doc, err := Decode(data)
	if err != nil {
		logger.Warn("ignoring unreadable cache entry", "error", err)
		return nil, nil
	}
	return doc, data
}

func (d *Driver) writeOutputs(ctx context.Context, name string, doc *fuse.Document, data []byte) error {
	base := path.Join(d.cfg.OutputDir, baseName(name))
	if d.cfg.HasFormat(config.FormatJSON) {
		if err := d.store.Write(ctx, base+".json", data); err != nil {
			return err
		}
	}
	if d.cfg.HasFormat(config.FormatCSV) {
		if err := d.store.Write(ctx, base+".csv", []byte(csv.FromDocument(doc))); err != nil {
			return err
		}
	}
	if d.cfg.HasFormat(config.FormatHTML) {
		page, err := html.FromDocument(doc, d.imageURL(name))
		if err != nil {
			return err
		}
		if err := d.store.Write(ctx, base+".html", []byte(page)); err != nil {
			return err
		}
	}
	if d.cfg.HasFormat(config.FormatOverlay) {
		img, err := d.store.Read(ctx, path.Join(d.cfg.ImageDir, name))
		if err != nil {
			return fmt.Errorf("unable to read page image: %w", err)
		}
		overlay, err := image.AddBoxes(img, doc.Regions)
		if err != nil {
			return fmt.Errorf("unable to draw overlay: %w", err)
		}
		if err := d.store.Write(ctx, base+"_overlay.png", overlay); err != nil {
			return err
		}
	}
	return nil
}

// imageURL is the page image relative to the output directory, so previews
// work wherever the dataset is copied.
func (d *Driver) imageURL(name string) string {
	rel, err := filepath.Rel(filepath.FromSlash(d.cfg.OutputDir), filepath.FromSlash(d.cfg.ImageDir))
	if err != nil {
		return path.Join(d.cfg.ImageDir, name)
	}
	return path.Join(filepath.ToSlash(rel), name)
}

func (d *Driver) writeReport(ctx context.Context, docs []*fuse.Document) error {
	var written []*fuse.Document
	for _, doc := range docs {
		if doc != nil {
			written = append(written, doc)
		}
	}
	data, err := xlsx.FromDocuments(written)
	if err != nil {
		return fmt.Errorf("unable to build report: %w", err)
	}
	if err := d.store.Write(ctx, path.Join(d.cfg.OutputDir, d.cfg.Report), data); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}
