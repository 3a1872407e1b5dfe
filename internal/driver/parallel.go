package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"indentguard/internal/config"
	"indentguard/internal/diag"
	"indentguard/internal/observ"
	"indentguard/internal/source"
	"indentguard/internal/trace"
)

// Run holds the results of a check over many files.
type Run struct {
	FileSet *source.FileSet
	Files   []FileResult
	Timings *observ.Aggregate
	Elapsed time.Duration
}

// Diagnostics returns every diagnostic ordered by path, line and column.
func (r *Run) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for i := range r.Files {
		out = append(out, r.Files[i].Bag.Items()...)
	}
	return out
}

// Bag collects all diagnostics into one unbounded bag.
func (r *Run) Bag() *diag.Bag {
	bag := diag.NewBag(0)
	for i := range r.Files {
		bag.Merge(r.Files[i].Bag)
	}
	return bag
}

// Counts returns the number of error diagnostics and of fixable ones.
func (r *Run) Counts() (errors, fixable int) {
	for i := range r.Files {
		for _, d := range r.Files[i].Bag.Items() {
			if d.Severity >= diag.SevError {
				errors++
			}
			if d.HasFix() {
				fixable++
			}
		}
	}
	return errors, fixable
}

// ListFiles expands paths into a sorted, duplicate-free list of files.
// Directories are walked, keeping files whose extension is in files.Extensions
// and skipping directories named in files.Exclude. Explicit file arguments are
// kept whatever their extension.
func ListFiles(paths []string, files config.Files) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			// пусть загрузка сообщит IO4001 для этого пути
			add(root)
			continue
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && slices.Contains(files.Exclude, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExtension(path, files.Extensions) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// Сортируем для детерминированного порядка
	sort.Strings(out)
	return out, nil
}

func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// jobLimit clamps the worker count to [1, n].
func jobLimit(jobs, n int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

// CheckPaths checks all files under paths in parallel.
func CheckPaths(ctx context.Context, paths []string, opts Options) (*Run, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check", trace.SpanFromContext(ctx))
	started := time.Now()

	files, err := ListFiles(paths, opts.Config.Files)
	if err != nil {
		span.End("error")
		return nil, err
	}
	run := &Run{
		FileSet: source.NewFileSetWithBase(opts.BaseDir),
		Files:   make([]FileResult, len(files)),
		Timings: observ.NewAggregate(),
	}

	// FileSet не потокобезопасен: загружаем всё заранее
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		id, err := run.FileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			id = run.FileSet.AddVirtual(path, nil)
		}
		fileIDs[i] = id
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	g, gctx := errgroup.WithContext(trace.WithSpan(ctx, span))
	g.SetLimit(jobLimit(opts.Jobs, len(files)))
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loadErr, failed := loadErrors[i]; failed {
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(loadErrorDiagnostic(fileIDs[i], loadErr))
				trace.Errorf(tracer, "load", "%s: %v", files[i], loadErr)
				run.Files[i] = FileResult{Path: files[i], FileID: fileIDs[i], Bag: bag, LoadError: loadErr}
				opts.Observer.emit(PhaseEvent{Path: files[i], Name: observ.StageLoad, Status: PhaseEnd, Done: true})
				return nil
			}
			run.Files[i] = checkFile(gctx, run.FileSet.Get(fileIDs[i]), opts)
			run.Timings.Add(run.Files[i].Timer)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("cancelled")
		return run, err
	}

	run.Elapsed = time.Since(started)
	run.Timings.SetWall(run.Elapsed)
	errs, fixable := run.Counts()
	span.WithCount("files", len(files)).
		WithCount("errors", errs).
		WithCount("fixable", fixable).
		End("")
	return run, nil
}

// CheckSource checks text that does not come from disk (stdin).
func CheckSource(ctx context.Context, name string, content []byte, opts Options) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		name = "<stdin>"
	}
	started := time.Now()
	run := &Run{FileSet: source.NewFileSetWithBase(opts.BaseDir), Timings: observ.NewAggregate()}
	id := run.FileSet.AddVirtual(name, content)

	opts.Cache = nil
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "check", trace.SpanFromContext(ctx))
	res := checkFile(trace.WithSpan(ctx, span), run.FileSet.Get(id), opts)
	run.Files = []FileResult{res}
	run.Timings.Add(res.Timer)
	run.Elapsed = time.Since(started)
	run.Timings.SetWall(run.Elapsed)
	span.End("")
	return run, nil
}
