package driver

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"indentguard/internal/diag"
	"indentguard/internal/fix"
	"indentguard/internal/observ"
	"indentguard/internal/source"
	"indentguard/internal/trace"
)

// DefaultMaxPasses bounds the fix loop when FixOptions.MaxPasses is zero.
const DefaultMaxPasses = 10

// FixOptions configures a fix run.
type FixOptions struct {
	Options
	// MaxPasses limits re-runs of the pipeline over fixed text.
	MaxPasses int
	// Mode and TargetID select fixes per file; ModeOnce and ModeID run a
	// single pass. Run-wide selection over many files goes through fix.Apply.
	Mode     fix.ApplyMode
	TargetID string
	// DryRun computes the fixed text without writing files.
	DryRun bool
}

// FileFix is the outcome of fixing one file.
type FileFix struct {
	Path   string
	FileID source.FileID // final text in FixRun.FileSet
	Before []byte        // original bytes, BOM included
	After  []byte
	Passes int
	// Fixed counts the diagnostics whose fixes were applied over all passes.
	Fixed int
	// Residual holds what the last pass still reports, sorted by position.
	Residual     []diag.Diagnostic
	SyntaxErrors bool
	Converged    bool
	Written      bool
	Timer        *observ.Timer
}

// Changed reports whether fixing altered the text.
func (f *FileFix) Changed() bool {
	return !bytes.Equal(f.Before, f.After)
}

// FixRun holds the results of fixing many files.
type FixRun struct {
	FileSet *source.FileSet
	Files   []FileFix
	Timings *observ.Aggregate
	Elapsed time.Duration
}

// Residual returns the diagnostics left in all files.
func (r *FixRun) Residual() []diag.Diagnostic {
	var out []diag.Diagnostic
	for i := range r.Files {
		out = append(out, r.Files[i].Residual...)
	}
	return out
}

// Bag returns the residual diagnostics in an unbounded bag.
func (r *FixRun) Bag() *diag.Bag {
	bag := diag.NewBag(0)
	for _, d := range r.Residual() {
		bag.Add(d)
	}
	return bag
}

// Totals returns the number of fixed diagnostics and changed files.
func (r *FixRun) Totals() (fixed, changed int) {
	for i := range r.Files {
		fixed += r.Files[i].Fixed
		if r.Files[i].Changed() {
			changed++
		}
	}
	return fixed, changed
}

func withBOM(text []byte, bom bool) []byte {
	if !bom {
		return text
	}
	return append([]byte(fix.BOM), text...)
}

// fixText re-runs the pipeline on its own output until no edit applies or
// the pass limit is hit. fs is private to the caller.
func fixText(ctx context.Context, fs *source.FileSet, id source.FileID, opts FixOptions, timer *observ.Timer) (FileFix, error) {
	file := fs.Get(id)
	path := file.Path
	flags := file.Flags
	text := file.Content
	bom := flags&source.FileHadBOM != 0

	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	if opts.Mode != fix.ModeAll {
		maxPasses = 1
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file:"+path, trace.SpanFromContext(ctx))
	out := FileFix{Path: path, Before: withBOM(text, bom), Timer: timer}

	for {
		if err := ctx.Err(); err != nil {
			span.End("cancelled")
			return out, err
		}
		a := analyze(ctx, file, opts.Options, timer, span)
		out.Residual = a.diags
		out.SyntaxErrors = a.syntaxErrors
		out.FileID = file.ID
		if out.Passes >= maxPasses {
			break
		}

		pass := trace.Begin(tracer, trace.ScopePass, fmt.Sprintf("pass %d", out.Passes+1), span)
		idx := timer.Begin(observ.StageFix)
		res := fix.ApplyEditsMode(fix.Source{Text: text, BOM: bom}, a.diags, fix.ApplyOptions{
			Mode:     opts.Mode,
			TargetID: opts.TargetID,
		})
		timer.End(idx, fmt.Sprintf("%d edits", len(res.Accepted)))
		pass.WithCount("edits", len(res.Accepted)).End("")
		if !res.Applied {
			out.Converged = true
			break
		}

		out.Passes++
		out.Fixed += len(res.Fixed)
		text, bom = res.Text, res.BOM
		flags &^= source.FileHadBOM | source.FileHadCRLF
		if bom {
			flags |= source.FileHadBOM
		}
		file = fs.Get(fs.Add(path, text, flags))
	}

	out.After = withBOM(text, bom)
	if !out.Converged {
		out.Converged = !hasFixable(out.Residual)
		if !out.Converged && opts.Mode == fix.ModeAll {
			trace.Point(tracer, trace.ScopeFile, "pass limit", fmt.Sprintf("%d passes", maxPasses), span)
		}
	}
	span.WithCount("passes", out.Passes).WithCount("fixed", out.Fixed).End("")
	return out, nil
}

func hasFixable(diags []diag.Diagnostic) bool {
	for i := range diags {
		if diags[i].HasFix() {
			return true
		}
	}
	return false
}

// FixPaths fixes all files under paths in parallel and writes the changed
// ones unless opts.DryRun is set.
func FixPaths(ctx context.Context, paths []string, opts FixOptions) (*FixRun, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "fix", trace.SpanFromContext(ctx))
	started := time.Now()

	files, err := ListFiles(paths, opts.Config.Files)
	if err != nil {
		span.End("error")
		return nil, err
	}
	run := &FixRun{
		FileSet: source.NewFileSetWithBase(opts.BaseDir),
		Files:   make([]FileFix, len(files)),
		Timings: observ.NewAggregate(),
	}
	// каждый воркер держит свой FileSet, общий собирается после Wait
	local := make([]*source.FileSet, len(files))

	g, gctx := errgroup.WithContext(trace.WithSpan(ctx, span))
	g.SetLimit(jobLimit(opts.Jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lfs := source.NewFileSet()
			local[i] = lfs
			var timer *observ.Timer
			if opts.Timings {
				timer = observ.NewTimer()
			}

			idx := timer.Begin(observ.StageLoad)
			id, loadErr := lfs.Load(path)
			timer.End(idx, "")
			if loadErr != nil {
				trace.Errorf(tracer, "load", "%s: %v", path, loadErr)
				id = lfs.AddVirtual(path, nil)
				run.Files[i] = FileFix{
					Path:     path,
					FileID:   id,
					Residual: []diag.Diagnostic{loadErrorDiagnostic(id, loadErr)},
				}
				opts.Observer.emit(PhaseEvent{Path: path, Name: observ.StageLoad, Status: PhaseEnd, Done: true})
				return nil
			}

			ff, err := fixText(gctx, lfs, id, opts, timer)
			if err != nil {
				return err
			}
			if ff.Changed() && !opts.DryRun {
				ff.Residual = writeFixed(lfs, &ff)
			}
			run.Files[i] = ff
			run.Timings.Add(timer)
			opts.Observer.emit(PhaseEvent{Path: path, Name: observ.StageFix, Status: PhaseEnd, Problems: len(ff.Residual), Done: true})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("cancelled")
		return run, err
	}

	for i := range run.Files {
		rebase(run.FileSet, local[i], &run.Files[i])
	}
	run.Elapsed = time.Since(started)
	run.Timings.SetWall(run.Elapsed)
	fixed, changed := run.Totals()
	span.WithCount("files", len(files)).WithCount("fixed", fixed).WithCount("changed", changed).End("")
	return run, nil
}

// writeFixed writes ff.After to disk. A failed write becomes an IO4002
// diagnostic appended to the residual set.
func writeFixed(fs *source.FileSet, ff *FileFix) []diag.Diagnostic {
	file := fs.Get(ff.FileID)
	var err error
	if file.Flags&source.FileDecodedUTF16 != 0 {
		err = fmt.Errorf("UTF-16 sources are not rewritten")
	} else {
		err = fix.WriteFile(ff.Path, ff.After)
	}
	if err == nil {
		ff.Written = true
		return ff.Residual
	}
	d := diag.NewError(diag.IOWriteFileError, source.Span{File: ff.FileID}, "failed to write fixes: "+err.Error())
	d.Loc = source.LineCol{Line: 1, Col: 1}
	return append(ff.Residual, d)
}

// rebase copies the final text of ff from its private FileSet into shared
// and rebinds the residual diagnostics. Every fix pass adds a new version of
// the file, so the latest version under ff.Path is the final one.
func rebase(shared, private *source.FileSet, ff *FileFix) {
	var content []byte
	flags := source.FileVirtual
	if private != nil {
		id := ff.FileID
		if latest, ok := private.GetLatest(ff.Path); ok {
			id = latest
		}
		if file := private.Get(id); file != nil {
			content, flags = file.Content, file.Flags
		}
	}
	id := shared.Add(ff.Path, content, flags)
	ff.FileID = id
	for i := range ff.Residual {
		rebind(&ff.Residual[i], id)
	}
}

// FixSource fixes text that does not come from disk (stdin). Nothing is written.
func FixSource(ctx context.Context, name string, content []byte, opts FixOptions) (*FixRun, error) {
	if name == "" {
		name = "<stdin>"
	}
	started := time.Now()
	lfs := source.NewFileSet()
	id := lfs.AddVirtual(name, content)

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "fix", trace.SpanFromContext(ctx))
	ff, err := fixText(trace.WithSpan(ctx, span), lfs, id, opts, timer)
	span.End("")
	if err != nil {
		return nil, err
	}

	run := &FixRun{FileSet: source.NewFileSetWithBase(opts.BaseDir), Files: []FileFix{ff}, Timings: observ.NewAggregate()}
	rebase(run.FileSet, lfs, &run.Files[0])
	run.Timings.Add(timer)
	run.Elapsed = time.Since(started)
	run.Timings.SetWall(run.Elapsed)
	return run, nil
}
