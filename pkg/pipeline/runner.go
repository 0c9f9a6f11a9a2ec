package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/surveyplot/pkg/cache"
	"github.com/matzehuels/surveyplot/pkg/chart"
	"github.com/matzehuels/surveyplot/pkg/observability"
	"github.com/matzehuels/surveyplot/pkg/survey"
)

// Publisher uploads a written artifact and returns its location.
type Publisher interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Runner executes the pipeline with caching.
//
// Runner holds no per-run state, so one Runner may serve concurrent runs.
type Runner struct {
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
	TTL       time.Duration // artifact lifetime in the cache
	Publisher Publisher     // optional
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means the default keyer and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: cache.TTLArtifact}
}

// Execute renders one chart family and writes it in every requested format.
// Nothing is written unless every format rendered successfully.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:     uuid.New(),
		Family:    opts.Family,
		Paths:     make(map[string]string),
		Published: make(map[string]string),
	}
	logger := r.Logger.With("run", result.RunID.String()[:8], "family", opts.Family)

	// Stage 1: Load + derive
	loadStart := time.Now()
	table, hash, err := r.Load(ctx, opts.Input)
	if err != nil {
		return nil, err
	}
	result.InputHash = hash
	result.Stats.Rows = table.Len()
	result.Stats.LoadTime = time.Since(loadStart)
	logger.Debug("loaded survey table", "path", opts.Input, "rows", table.Len(), "duration", result.Stats.LoadTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, info, err := r.RenderWithCacheInfo(ctx, table, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo = info
	result.Stats.RenderTime = time.Since(renderStart)
	logger.Info("rendered figure",
		"formats", opts.Formats,
		"cached", len(info.Hits),
		"duration", result.Stats.RenderTime)

	if opts.SkipWrite {
		return result, nil
	}

	// Stage 3: Write + publish
	writeStart := time.Now()
	for _, format := range opts.Formats {
		path := opts.OutputPath(format)
		if err := WriteFile(path, artifacts[format]); err != nil {
			return nil, err
		}
		result.Paths[format] = path
		logger.Info("wrote figure", "path", path, "bytes", len(artifacts[format]))

		if r.Publisher != nil {
			loc, err := r.Publisher.Upload(ctx, path, artifacts[format], chart.ContentType(format))
			if err != nil {
				return nil, fmt.Errorf("publish %s: %w", path, err)
			}
			result.Published[format] = loc
			logger.Info("published figure", "location", loc)
		}
	}
	result.Stats.WriteTime = time.Since(writeStart)

	return result, nil
}

// Load reads the dataset at path, derives total_redshifts and returns the
// table with the content hash of the file.
func (r *Runner) Load(ctx context.Context, path string) (*survey.Table, string, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()

	table, hash, err := load(path)
	rows := 0
	if table != nil {
		rows = table.Len()
	}
	hooks.OnLoadComplete(ctx, path, rows, time.Since(start), err)
	if err != nil {
		return nil, "", err
	}
	return table, hash, nil
}

func load(path string) (*survey.Table, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &survey.DataLoadError{Path: path, Err: err}
	}
	table, err := survey.LoadBytes(path, data)
	if err != nil {
		return nil, "", err
	}
	if err := table.Derive(survey.ColTotalRedshifts, survey.ColGalaxyZLow, survey.ColGalaxyZHigh); err != nil {
		return nil, "", err
	}
	return table, cache.Hash(data), nil
}

// RenderWithCacheInfo encodes the family's figure in every requested format.
// Cached artifacts are reused unless opts.Refresh is set; the figure is only
// drawn when at least one format misses.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, table *survey.Table, inputHash string, opts Options) (map[string][]byte, CacheInfo, error) {
	var info CacheInfo
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, info, err
	}
	fam, _ := chart.Lookup(opts.Family)
	fam.Style.Highlight = opts.Highlight

	artifacts := make(map[string][]byte, len(opts.Formats))
	keys := make(map[string]string, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(inputHash, cache.ArtifactKeyOpts{
			Family:    opts.Family,
			Format:    format,
			Highlight: opts.Highlight,
		})
		keys[format] = key
		if opts.Refresh {
			info.Misses = append(info.Misses, format)
			continue
		}
		if data, ok := r.cacheGet(ctx, key); ok {
			artifacts[format] = data
			info.Hits = append(info.Hits, format)
			continue
		}
		info.Misses = append(info.Misses, format)
	}
	if len(info.Misses) == 0 {
		return artifacts, info, nil
	}

	fig, err := fam.Render(table)
	if err != nil {
		return nil, info, err
	}
	for _, format := range info.Misses {
		data, err := r.encode(ctx, fig, fam.Name, format)
		if err != nil {
			return nil, info, err
		}
		artifacts[format] = data
		r.cacheSet(ctx, keys[format], data)
	}
	return artifacts, info, nil
}

// Render is RenderWithCacheInfo without the cache info.
func (r *Runner) Render(ctx context.Context, table *survey.Table, inputHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, table, inputHash, opts)
	return artifacts, err
}

func (r *Runner) encode(ctx context.Context, fig *chart.Figure, family, format string) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, family, format)
	start := time.Now()
	data, err := fig.Render(format)
	hooks.OnRenderComplete(ctx, family, format, len(data), time.Since(start), err)
	return data, err
}

// cacheGet treats every cache failure as a miss.
func (r *Runner) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "err", err)
		ok = false
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, key)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, key)
	return nil, false
}

func (r *Runner) cacheSet(ctx context.Context, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
