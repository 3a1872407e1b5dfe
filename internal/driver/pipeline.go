package driver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fortio.org/safecast"

	"indentguard/internal/config"
	"indentguard/internal/diag"
	"indentguard/internal/indent"
	"indentguard/internal/observ"
	"indentguard/internal/parser"
	"indentguard/internal/source"
	"indentguard/internal/trace"
)

// Options configures a check run.
type Options struct {
	Config config.Config
	// MaxDiagnostics caps diagnostics per file; <= 0 means unbounded.
	MaxDiagnostics int
	// CheckOnSyntaxError runs the indentation check on trees with syntax errors.
	CheckOnSyntaxError bool
	// Jobs limits parallel workers; <= 0 means GOMAXPROCS.
	Jobs     int
	Cache    *DiskCache
	Observer PhaseObserver
	// Timings enables per-stage timers.
	Timings bool
	// BaseDir is the directory result paths are shown relative to; empty
	// means the working directory.
	BaseDir string
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	Path         string
	FileID       source.FileID
	Bag          *diag.Bag
	SyntaxErrors bool
	LoadError    error
	Cached       bool
	Timer        *observ.Timer
}

// Problems returns the number of indentation findings.
func (r *FileResult) Problems() int {
	n := 0
	for _, d := range r.Bag.Items() {
		if d.Code == diag.IndentMismatch {
			n++
		}
	}
	return n
}

// analysis is the diagnostics of one file version.
type analysis struct {
	diags        []diag.Diagnostic
	syntaxErrors bool
}

// analyze parses file and checks its indentation. Diagnostics are sorted.
func analyze(ctx context.Context, file *source.File, opts Options, timer *observ.Timer, parent *trace.Span) analysis {
	tracer := trace.FromContext(ctx)
	bag := diag.NewBag(opts.MaxDiagnostics)

	var maxErrors uint
	if opts.MaxDiagnostics > 0 {
		if v, err := safecast.Conv[uint](opts.MaxDiagnostics); err == nil {
			maxErrors = v
		}
	}

	stage := trace.Begin(tracer, trace.ScopeStage, observ.StageParse, parent)
	idx := timer.Begin(observ.StageParse)
	start := time.Now()
	opts.Observer.emit(PhaseEvent{Path: file.Path, Name: observ.StageParse, Status: PhaseStart})
	res := parser.ParseFile(file, parser.Options{
		Reporter:  diag.BagReporter{Bag: bag, File: file},
		MaxErrors: maxErrors,
	})
	syntaxErrors := bag.HasErrors()
	note := fmt.Sprintf("%d tokens", len(res.Tree.Tokens))
	timer.End(idx, note)
	opts.Observer.emit(PhaseEvent{Path: file.Path, Name: observ.StageParse, Status: PhaseEnd, Elapsed: time.Since(start)})
	stage.WithExtra("tokens", strconv.Itoa(len(res.Tree.Tokens))).
		WithExtra("errors", strconv.FormatUint(uint64(res.Errors), 10)).
		End("")

	if syntaxErrors && !opts.CheckOnSyntaxError {
		trace.Point(tracer, trace.ScopeStage, "skip check", "syntax errors", parent)
		bag.Sort()
		return analysis{diags: bag.Items(), syntaxErrors: true}
	}

	stage = trace.Begin(tracer, trace.ScopeStage, observ.StageCheck, parent)
	idx = timer.Begin(observ.StageCheck)
	start = time.Now()
	opts.Observer.emit(PhaseEvent{Path: file.Path, Name: observ.StageCheck, Status: PhaseStart})
	found := indent.Check(res.Tree, opts.Config.Indent)
	for _, d := range found {
		bag.Add(d)
	}
	timer.End(idx, fmt.Sprintf("%d problems", len(found)))
	opts.Observer.emit(PhaseEvent{Path: file.Path, Name: observ.StageCheck, Status: PhaseEnd, Elapsed: time.Since(start), Problems: len(found)})
	stage.WithCount("problems", len(found)).End("")

	bag.Sort()
	return analysis{diags: bag.Items(), syntaxErrors: syntaxErrors}
}

// checkFile runs the pipeline for one loaded file, consulting the cache.
func checkFile(ctx context.Context, file *source.File, opts Options) FileResult {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file:"+file.Path, trace.SpanFromContext(ctx))

	res := FileResult{
		Path:   file.Path,
		FileID: file.ID,
		Bag:    diag.NewBag(opts.MaxDiagnostics),
	}
	if opts.Timings {
		res.Timer = observ.NewTimer()
	}

	var key Digest
	if opts.Cache != nil {
		key = cacheKey(file.Hash, opts.Config.Fingerprint(), opts.CheckOnSyntaxError)
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			trace.Errorf(tracer, "cache", "read %s: %v", file.Path, err)
		}
		if hit {
			for _, d := range payloadDiagnostics(&payload, file) {
				res.Bag.Add(d)
			}
			res.SyntaxErrors = payload.SyntaxErrors
			res.Cached = true
			opts.Observer.emit(PhaseEvent{Path: file.Path, Name: observ.StageCheck, Status: PhaseEnd, Problems: res.Problems(), Done: true})
			span.WithExtra("cache", "hit").End("")
			return res
		}
	}

	a := analyze(ctx, file, opts, res.Timer, span)
	for _, d := range a.diags {
		res.Bag.Add(d)
	}
	res.SyntaxErrors = a.syntaxErrors

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, diagnosticsToPayload(file, a.syntaxErrors, a.diags)); err != nil {
			trace.Errorf(tracer, "cache", "write %s: %v", file.Path, err)
		}
	}
	opts.Observer.emit(PhaseEvent{Path: file.Path, Name: observ.StageCheck, Status: PhaseEnd, Problems: res.Problems(), Done: true})
	span.WithCount("diagnostics", res.Bag.Len()).End("")
	return res
}

// loadErrorDiagnostic turns a failed read into an IO4001 diagnostic on a placeholder file.
func loadErrorDiagnostic(id source.FileID, err error) diag.Diagnostic {
	d := diag.NewError(diag.IOLoadFileError, source.Span{File: id}, "failed to load file: "+err.Error())
	d.Loc = source.LineCol{Line: 1, Col: 1}
	return d
}
