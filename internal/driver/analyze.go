package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"emptylines/internal/config"
	"emptylines/internal/diag"
	"emptylines/internal/emptylines"
	"emptylines/internal/observ"
	"emptylines/internal/source"
	"emptylines/internal/trace"
)

// Options configures AnalyzeFile, AnalyzeDir and FixPath.
type Options struct {
	// Config supplies rule settings and file filters; nil means config.Default().
	Config *config.Config
	// Jobs bounds concurrent file analysis; <= 0 uses GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	// Cache, when set, short-circuits analysis of unchanged files.
	Cache    *DiskCache
	Progress ProgressSink
	// Timer records run phases; it is only touched from the calling goroutine.
	Timer *observ.Timer
}

func (o Options) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

// FileResult is the outcome for one file.
type FileResult struct {
	// Path is relative to the config root when possible.
	Path     string
	FileID   source.FileID
	Bag      *diag.Bag
	Findings []emptylines.Finding
	// Generated files are lexed but produce no findings.
	Generated bool
	Cached    bool
	// Err is set when the file could not be loaded.
	Err error
}

// Result aggregates a run over one or more files.
type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
	// Bag holds every diagnostic, sorted, capped at MaxDiagnostics.
	Bag *diag.Bag
}

// AnalyzeFile checks a single file.
func AnalyzeFile(ctx context.Context, path string, opts Options) (*Result, error) {
	cfg := opts.config()
	fileSet := source.NewFileSetWithBase(cfg.Root)
	return analyzePaths(ctx, fileSet, []string{path}, opts)
}

// AnalyzeDir checks every included file under dir, in parallel.
func AnalyzeDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	cfg := opts.config()
	stop := opts.Timer.Track("walk")
	files, err := listFiles(cfg, dir)
	stop(strconv.Itoa(len(files)) + " files")
	if err != nil {
		return nil, err
	}
	base := cfg.Root
	if base == "" {
		base = dir
	}
	return analyzePaths(ctx, source.NewFileSetWithBase(base), files, opts)
}

// AnalyzeSource checks an in-memory buffer, such as stdin.
func AnalyzeSource(name string, content []byte, opts Options) *Result {
	cfg := opts.config()
	fileSet := source.NewFileSetWithBase(cfg.Root)
	id := fileSet.AddVirtual(name, content)
	if cfg.IsGenerated(relPath(cfg, name), content) {
		fileSet.MarkGenerated(id)
	}
	res := analyzeLoaded(fileSet, id, relPath(cfg, name), cfg, nil)
	return &Result{FileSet: fileSet, Files: []FileResult{res}, Bag: mergeBags(opts.MaxDiagnostics, res)}
}

// Analyze dispatches on whether path is a file or a directory.
func Analyze(ctx context.Context, path string, opts Options) (*Result, error) {
	if isDir(path) {
		return AnalyzeDir(ctx, path, opts)
	}
	return AnalyzeFile(ctx, path, opts)
}

func analyzePaths(ctx context.Context, fileSet *source.FileSet, files []string, opts Options) (*Result, error) {
	cfg := opts.config()
	tracer := trace.FromContext(ctx)
	runSpan := trace.Begin(tracer, trace.ScopePass, "analyze", trace.CurrentSpan(ctx).SpanID)
	defer func() { runSpan.End("") }()

	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return &Result{FileSet: fileSet, Files: results, Bag: diag.NewBag(opts.MaxDiagnostics)}, nil
	}

	// FileSet is not safe for concurrent Add, so every file is loaded and
	// flagged up front; workers only read.
	stopLoad := opts.Timer.Track("load")
	for i, path := range files {
		rel := relPath(cfg, path)
		results[i].Path = rel
		fileID, err := fileSet.Load(path)
		if err != nil {
			results[i].Err = err
			// keep a placeholder so the diagnostic has a file to point at
			results[i].FileID = fileSet.AddVirtual(path, nil)
			emit(opts.Progress, Event{File: rel, Stage: StageLoad, Status: StatusError, Err: err})
			trace.Point(tracer, trace.ScopeFile, "load-failed", err.Error(), map[string]string{"file": rel})
			continue
		}
		results[i].FileID = fileID
		if cfg.IsGenerated(rel, fileSet.Get(fileID).Content) {
			fileSet.MarkGenerated(fileID)
		}
		emit(opts.Progress, Event{File: rel, Stage: StageAnalyze, Status: StatusQueued})
	}
	stopLoad(strconv.Itoa(len(files)) + " files")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	stopAnalyze := opts.Timer.Track("analyze")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i := range files {
		if results[i].Err != nil {
			results[i].Bag = loadErrorBag(results[i])
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			emit(opts.Progress, Event{File: results[i].Path, Stage: StageAnalyze, Status: StatusWorking})
			span := trace.Begin(tracer, trace.ScopeFile, "analyze-file", runSpan.ID()).WithExtra("file", results[i].Path)

			res := analyzeLoaded(fileSet, results[i].FileID, results[i].Path, cfg, opts.Cache)
			results[i] = res

			span.WithExtra("findings", strconv.Itoa(len(res.Findings))).
				WithExtra("cached", strconv.FormatBool(res.Cached)).
				End("")
			emit(opts.Progress, Event{
				File:     res.Path,
				Stage:    StageAnalyze,
				Status:   StatusDone,
				Elapsed:  time.Since(started),
				Findings: len(res.Findings),
				Cached:   res.Cached,
			})
			return nil
		})
	}
	err := g.Wait()
	stopAnalyze("")
	if err != nil {
		return nil, err
	}

	stopMerge := opts.Timer.Track("merge")
	bag := mergeBags(opts.MaxDiagnostics, results...)
	stopMerge(strconv.Itoa(bag.Len()) + " diagnostics")

	return &Result{FileSet: fileSet, Files: results, Bag: bag}, nil
}

// analyzeLoaded runs the rule over one loaded file, consulting cache first.
func analyzeLoaded(fileSet *source.FileSet, id source.FileID, rel string, cfg *config.Config, cache *DiskCache) FileResult {
	file := fileSet.Get(id)
	res := FileResult{
		Path:      rel,
		FileID:    id,
		Bag:       diag.NewBag(0),
		Generated: file.Flags&source.FileGenerated != 0,
	}
	reporter := diag.BagReporter{Bag: res.Bag}

	opts, err := cfg.RuleOptions(file.Path)
	if err != nil {
		// Validate already ran on the config, so this is a per-file syntax problem.
		res.Err = err
		res.Bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Span{File: id}, err.Error()))
		return res
	}

	key := cacheKey(file, cfg.Fingerprint())
	var payload DiskPayload
	if hit, getErr := cache.Get(key, &payload); getErr == nil && hit {
		res.Findings = payload.replay(file, opts, reporter)
		res.Cached = true
		return res
	}

	analysis := emptylines.Analyze(file, opts, reporter)
	res.Findings = analysis.Findings

	if cache != nil {
		lex := make([]diag.Diagnostic, 0)
		for _, d := range res.Bag.Items() {
			if d.Code != diag.LintEmptyLines {
				lex = append(lex, d)
			}
		}
		// a failed write only costs a future cache miss
		_ = cache.Put(key, toDiskPayload(res.Findings, lex, res.Generated))
	}
	return res
}

func loadErrorBag(res FileResult) *diag.Bag {
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Span{File: res.FileID},
		fmt.Sprintf("failed to load file: %v", res.Err)))
	return bag
}

// mergeBags collects per-file diagnostics into one sorted bag.
func mergeBags(limit int, results ...FileResult) *diag.Bag {
	bag := diag.NewBag(limit)
	for _, res := range results {
		if res.Bag == nil {
			continue
		}
		for _, d := range res.Bag.Items() {
			if !bag.Add(d) {
				break
			}
		}
	}
	bag.Sort()
	return bag
}

// relPath makes path relative to the config root for glob matching and display.
func relPath(cfg *config.Config, path string) string {
	if cfg.Root == "" {
		return filepath.ToSlash(filepath.Clean(path))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(cfg.Root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.ToSlash(rel)
}
