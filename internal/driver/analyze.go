package driver

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"
	"time"

	"moveck/internal/bodyfile"
	"moveck/internal/diag"
	"moveck/internal/mir"
	"moveck/internal/movepaths"
	"moveck/internal/observ"
	"moveck/internal/trace"
	"moveck/internal/types"
)

// Options configure an analysis run.
type Options struct {
	// Jobs bounds the number of files analyzed at once; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps diagnostics per file; 0 means unlimited.
	MaxDiagnostics int
	// Params binds symbolic array lengths a body file leaves unbound.
	Params map[string]uint64
	// Cache, when set, short-circuits files analyzed before.
	Cache *DiskCache
	// Progress receives per-file events.
	Progress ProgressSink
	// KeepData keeps the decoded file and MoveData in results.
	KeepData bool
}

// BodyResult is the analysis of one body.
type BodyResult struct {
	Name     string
	Snapshot movepaths.Snapshot
	// Data is nil for cached results or when KeepData is unset.
	Data *movepaths.MoveData
}

// FileResult is the analysis of one body file.
type FileResult struct {
	Path   string
	Bodies []BodyResult
	Bag    *diag.Bag
	// File is the decoded input; only set with KeepData.
	File   *bodyfile.File
	Cached bool
	// Failed is set when the analyzer hit an internal error.
	Failed bool
	Timing observ.Report
}

// AnalyzeFile loads path and gathers moves for every body in it.
// Problems with the input are reported in the result's Bag.
func AnalyzeFile(ctx context.Context, path string, opts Options) FileResult {
	ctx, span := trace.StartSpan(trace.WithUnit(ctx, path), trace.ScopePass, "analyze_file")

	res := analyzeFile(ctx, path, opts, span.ID())

	detail := "ok"
	switch {
	case res.Failed:
		detail = "internal error"
	case res.Cached:
		detail = "cached"
	}
	span.WithExtra("bodies", strconv.Itoa(len(res.Bodies))).
		WithExtra("diagnostics", strconv.Itoa(res.Bag.Len())).
		End(detail)
	return res
}

func analyzeFile(ctx context.Context, path string, opts Options, spanID uint64) FileResult {
	res := FileResult{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
	timer := observ.NewTimer()
	defer func() { res.Timing = timer.Report() }()
	tracer := trace.FromContext(ctx)
	start := time.Now()
	finish := func(stage Stage, status Status, err error) {
		emit(opts.Progress, Event{File: path, Stage: stage, Status: status, Err: err, Elapsed: time.Since(start)})
	}

	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	var data []byte
	err := timer.Measure("read", func() error {
		var err error
		data, err = os.ReadFile(path)
		return err
	})
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, diag.InFile(path, 0), err.Error()))
		finish(StageLoad, StatusError, err)
		return res
	}

	key := resultKey(data, opts)
	if opts.Cache != nil && !opts.KeepData {
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			trace.Point(tracer, trace.ScopePass, "cache_error", spanID, err.Error())
		}
		if hit {
			fromPayload(&res, &payload)
			finish(StageLoad, StatusCached, nil)
			return res
		}
	}

	var file *bodyfile.File
	err = timer.Measure("parse", func() error {
		var err error
		file, err = bodyfile.Parse(path, data)
		return err
	})
	if err != nil {
		reportLoadError(res.Bag, path, err)
		finish(StageLoad, StatusError, err)
		return res
	}
	bindParams(file, opts.Params)
	if opts.KeepData {
		res.File = file
	}

	emit(opts.Progress, Event{File: path, Stage: StageValidate, Status: StatusWorking})
	valid := make([]*mir.Body, 0, len(file.Bodies))
	_ = timer.Measure("validate", func() error {
		for _, body := range file.Bodies {
			if err := mir.Validate(body, file.Types); err != nil {
				reportInvalid(res.Bag, path, body.Name, err)
				continue
			}
			valid = append(valid, body)
		}
		return nil
	})

	emit(opts.Progress, Event{File: path, Stage: StageGather, Status: StatusWorking})
	_ = timer.Measure("gather", func() error {
		for _, body := range valid {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			moves, ice := gatherBody(body, file, tracer, spanID)
			if ice != nil {
				res.Failed = true
				res.Bag.Add(diag.FromInternalError(path, ice))
				continue
			}
			diag.ReportIllegalMoves(diag.BagReporter{Bag: res.Bag}, path, moves, file.Types)
			br := BodyResult{Name: body.Name, Snapshot: moves.Snapshot()}
			if opts.KeepData {
				br.Data = moves
			}
			res.Bodies = append(res.Bodies, br)
		}
		return nil
	})
	res.Bag.Sort()

	status := StatusDone
	if res.Failed || res.Bag.HasErrors() {
		status = StatusError
	}
	finish(StageGather, status, nil)

	// an internal error says nothing about the input; retry it next time
	if opts.Cache != nil && !res.Failed && ctx.Err() == nil {
		payload := toPayload(&res)
		if err := opts.Cache.Put(key, payload); err != nil {
			trace.Point(tracer, trace.ScopePass, "cache_error", spanID, err.Error())
		}
	}
	return res
}

// gatherBody runs the move gatherer, turning its internal-error panics into
// a value. Any other panic is not ours and keeps unwinding.
func gatherBody(body *mir.Body, file *bodyfile.File, tracer trace.Tracer, spanID uint64) (data *movepaths.MoveData, ice *movepaths.InternalError) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := movepaths.AsInternalError(r)
			if !ok {
				panic(r)
			}
			ice = e
			trace.Point(tracer, trace.ScopeBody, "internal_error", spanID, e.Error())
		}
	}()
	data = movepaths.GatherMoves(body, file.Types, file.Env, movepaths.Options{Tracer: tracer, ParentSpan: spanID, Unit: file.Path})
	return data, nil
}

// bindParams adds extra to the file's environment. Values in the file win.
func bindParams(file *bodyfile.File, extra map[string]uint64) {
	if len(extra) == 0 {
		return
	}
	merged := maps.Clone(extra)
	maps.Copy(merged, file.Params)
	file.Env = types.NewParamEnv(merged)
}

func reportLoadError(bag *diag.Bag, path string, err error) {
	errs := bodyfile.Errors(err)
	if len(errs) == 0 {
		bag.Add(diag.NewError(diag.BodParseError, diag.InFile(path, 0), err.Error()))
		return
	}
	for _, e := range errs {
		pos := diag.Position{File: e.File, Line: e.Line, Body: e.Body, Loc: e.Loc, HasLoc: e.HasLoc}
		code := diag.BodParseError
		var ioErr *os.PathError
		if errors.As(e.Err, &ioErr) {
			code = diag.IOLoadFileError
		}
		bag.Add(diag.NewError(code, pos, e.Err.Error()))
	}
	bag.Sort()
}

func reportInvalid(bag *diag.Bag, path, body string, err error) {
	pos := diag.Position{File: path, Body: body}
	var multi interface{ Unwrap() []error }
	if errors.As(err, &multi) {
		for _, e := range multi.Unwrap() {
			bag.Add(diag.NewError(diag.BodInvalid, pos, e.Error()))
		}
		return
	}
	bag.Add(diag.NewError(diag.BodInvalid, pos, err.Error()))
}

func toPayload(res *FileResult) *DiskPayload {
	p := &DiskPayload{
		Path:        res.Path,
		Snapshots:   make([]movepaths.Snapshot, len(res.Bodies)),
		Diagnostics: res.Bag.Items(),
		Dropped:     res.Bag.Dropped(),
	}
	for i := range res.Bodies {
		p.Snapshots[i] = res.Bodies[i].Snapshot
	}
	return p
}

func fromPayload(res *FileResult, p *DiskPayload) {
	res.Cached = true
	for _, s := range p.Snapshots {
		res.Bodies = append(res.Bodies, BodyResult{Name: s.Body, Snapshot: s})
	}
	for _, d := range p.Diagnostics {
		res.Bag.Add(d)
	}
	res.Bag.AddDropped(p.Dropped)
}

// Summary counts the outcome of a run.
type Summary struct {
	Files    int
	Bodies   int
	Cached   int
	Errors   int
	Warnings int
	Failed   int
	// Suppressed counts diagnostics past the per-file limit.
	Suppressed int
}

func (s Summary) String() string {
	out := fmt.Sprintf("%d file(s), %d body(ies), %d error(s), %d warning(s), %d cached, %d internal error(s)",
		s.Files, s.Bodies, s.Errors, s.Warnings, s.Cached, s.Failed)
	if s.Suppressed > 0 {
		out += fmt.Sprintf(", %d suppressed", s.Suppressed)
	}
	return out
}

// Summarize tallies results.
func Summarize(results []FileResult) Summary {
	s := Summary{Files: len(results)}
	for i := range results {
		r := &results[i]
		s.Bodies += len(r.Bodies)
		if r.Cached {
			s.Cached++
		}
		if r.Failed {
			s.Failed++
		}
		if r.Bag == nil {
			continue
		}
		s.Errors += r.Bag.Count(diag.SevError)
		s.Warnings += r.Bag.Count(diag.SevWarning) - r.Bag.Count(diag.SevError)
		s.Suppressed += r.Bag.Dropped()
	}
	return s
}
