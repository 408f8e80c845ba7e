package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moveck/internal/diag"
	"moveck/internal/driver"
	"moveck/internal/testkit"
)

const borrowedBody = `
[[body]]
name = "take"
args = 1

[[body.local]]
type = "()"

[[body.local]]
type = "&String"

[[body.local]]
type = "String"

[[adt]]
name = "String"
dtor = true

[[body.block]]
stmts = ["_2 = move (*_1)"]
term = "return"
`

const cleanBody = `
[[body]]
name = "pass"
args = 1

[[body.local]]
type = "()"

[[body.local]]
type = "(u32, u32)"

[[body.local]]
type = "u32"

[[body.block]]
stmts = ["_2 = move _1.1"]
term = "return"
`

const deinitBody = `
[[body]]
name = "lowered_late"

[[body.local]]
type = "()"

[[body.local]]
type = "u32"

[[body.block]]
stmts = ["Deinit(_1)"]
term = "return"
`

const symbolicBody = `
[[adt]]
name = "String"
dtor = true

[[body]]
name = "window"
args = 1

[[body.local]]
type = "()"

[[body.local]]
type = "[String; M]"

[[body.local]]
type = "[String; 2]"

[[body.block]]
stmts = ["_2 = move _1[0..2]"]
term = "return"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestAnalyzeFileReportsIllegalMoves(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "take.toml", borrowedBody)

	res := driver.AnalyzeFile(context.Background(), p, driver.Options{KeepData: true})
	require.False(t, res.Failed)
	require.Len(t, res.Bodies, 1)
	assert.Equal(t, "take", res.Bodies[0].Name)
	require.NotNil(t, res.Bodies[0].Data)
	require.NoError(t, testkit.CheckMoveData(res.Bodies[0].Data))
	require.NotNil(t, res.File)

	assert.Equal(t, []diag.Code{diag.MovBorrowedContent}, codes(res.Bag))
	d := res.Bag.Items()[0]
	assert.Equal(t, p, d.Primary.File)
	assert.Equal(t, "take", d.Primary.Body)
	assert.True(t, d.Primary.HasLoc)
	assert.Len(t, res.Bodies[0].Snapshot.IllegalMoves, 1)
}

func TestAnalyzeFileMissing(t *testing.T) {
	res := driver.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.toml"), driver.Options{})
	assert.Empty(t, res.Bodies)
	assert.Equal(t, []diag.Code{diag.IOLoadFileError}, codes(res.Bag))
}

func TestAnalyzeFileParseErrors(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "bad.toml", `
[[body]]
name = "broken"

[[body.local]]
type = "()"

[[body.block]]
stmts = ["_0 = move"]
term = "return"
`)
	res := driver.AnalyzeFile(context.Background(), p, driver.Options{})
	require.Equal(t, 1, res.Bag.Len())
	d := res.Bag.Items()[0]
	assert.Equal(t, diag.BodParseError, d.Code)
	assert.Equal(t, "broken", d.Primary.Body)
	assert.True(t, d.Primary.HasLoc)
}

func TestAnalyzeFileRecoversInternalError(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "ice.toml", deinitBody+cleanBody)

	res := driver.AnalyzeFile(context.Background(), p, driver.Options{})
	assert.True(t, res.Failed)
	assert.Equal(t, []diag.Code{diag.IceInternal}, codes(res.Bag))
	// the other body in the file is still analyzed
	require.Len(t, res.Bodies, 1)
	assert.Equal(t, "pass", res.Bodies[0].Name)
}

func TestAnalyzeFileParams(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "window.toml", symbolicBody)

	res := driver.AnalyzeFile(context.Background(), p, driver.Options{})
	assert.True(t, res.Failed, "unbound length must be an internal error")

	res = driver.AnalyzeFile(context.Background(), p, driver.Options{Params: map[string]uint64{"M": 3}})
	require.False(t, res.Failed)
	require.Len(t, res.Bodies, 1)
	assert.Len(t, res.Bodies[0].Snapshot.Moves, 2)
}

func TestAnalyzeFilesKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.toml", cleanBody),
		writeFile(t, dir, "b.toml", borrowedBody),
		writeFile(t, dir, "c.toml", deinitBody),
		writeFile(t, dir, "d.toml", cleanBody),
	}

	var mu sync.Mutex
	var events []driver.Event
	sink := driver.SinkFunc(func(ev driver.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	results, err := driver.AnalyzeFiles(context.Background(), paths, driver.Options{Jobs: 3, Progress: sink})
	require.NoError(t, err)
	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}
	assert.Equal(t, 0, results[0].Bag.Len())
	assert.Equal(t, []diag.Code{diag.MovBorrowedContent}, codes(results[1].Bag))
	assert.True(t, results[2].Failed)
	assert.False(t, results[3].Failed)

	sum := driver.Summarize(results)
	assert.Equal(t, 4, sum.Files)
	assert.Equal(t, 3, sum.Bodies)
	assert.Equal(t, 2, sum.Errors)
	assert.Equal(t, 1, sum.Failed)
	assert.Zero(t, sum.Suppressed)

	require.NotEmpty(t, events)
	for _, ev := range events {
		if ev.File != "" && ev.Status != driver.StatusQueued && ev.Status != driver.StatusWorking {
			assert.Positive(t, ev.Elapsed, "final event for %s", ev.File)
		}
	}
	last := events[len(events)-1]
	assert.Empty(t, last.File)
	assert.Equal(t, driver.StatusDone, last.Status)
}

func TestAnalyzeFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeFile(t, dir, "a.toml", cleanBody)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := driver.AnalyzeFiles(ctx, paths, driver.Options{Jobs: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListBodyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.toml", cleanBody)
	writeFile(t, dir, "a/x.toml", cleanBody)
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, driver.ConfigFileName, "")
	writeFile(t, dir, ".hidden/y.toml", cleanBody)

	files, err := driver.ListBodyFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a", "x.toml"),
		filepath.Join(dir, "b.toml"),
	}, files)
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := driver.OpenDiskCacheAt(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	p := writeFile(t, dir, "take.toml", borrowedBody)
	opts := driver.Options{Cache: cache}

	first := driver.AnalyzeFile(context.Background(), p, opts)
	require.False(t, first.Cached)

	second := driver.AnalyzeFile(context.Background(), p, opts)
	require.True(t, second.Cached)
	assert.Equal(t, driver.CacheStats{Hits: 1, Misses: 1, Writes: 1}, cache.Stats())
	assert.Equal(t, first.Bag.Items(), second.Bag.Items())
	require.Len(t, second.Bodies, 1)
	want, got := first.Bodies[0].Snapshot, second.Bodies[0].Snapshot
	assert.Equal(t, want.Body, got.Body)
	assert.Equal(t, want.Paths, got.Paths)
	assert.Equal(t, want.Inits, got.Inits)
	assert.Equal(t, want.IllegalMoves, got.IllegalMoves)
	assert.Len(t, got.Moves, len(want.Moves))
	assert.Nil(t, second.Bodies[0].Data)

	// different params are a different key
	third := driver.AnalyzeFile(context.Background(), p, driver.Options{Cache: cache, Params: map[string]uint64{"K": 1}})
	assert.False(t, third.Cached)

	require.NoError(t, cache.DropAll())
	fourth := driver.AnalyzeFile(context.Background(), p, opts)
	assert.False(t, fourth.Cached)
}

func TestDiskCacheKeepsSuppressedCount(t *testing.T) {
	dir := t.TempDir()
	cache, err := driver.OpenDiskCacheAt(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	p := writeFile(t, dir, "twice.toml", strings.Replace(borrowedBody,
		`stmts = ["_2 = move (*_1)"]`, `stmts = ["_2 = move (*_1)", "_2 = move (*_1)"]`, 1))
	opts := driver.Options{Cache: cache, MaxDiagnostics: 1}

	first := driver.AnalyzeFile(context.Background(), p, opts)
	require.False(t, first.Cached)
	assert.Equal(t, 1, first.Bag.Len())
	assert.Equal(t, 1, first.Bag.Dropped())

	second := driver.AnalyzeFile(context.Background(), p, opts)
	require.True(t, second.Cached)
	assert.Equal(t, 1, second.Bag.Len())
	assert.Equal(t, 1, second.Bag.Dropped())
	assert.Equal(t, 1, driver.Summarize([]driver.FileResult{second}).Suppressed)

	// another limit keeps other diagnostics, so it is another entry
	all := driver.AnalyzeFile(context.Background(), p, driver.Options{Cache: cache})
	assert.False(t, all.Cached)
	assert.Equal(t, 2, all.Bag.Len())
	assert.Zero(t, all.Bag.Dropped())
}

func TestDiskCacheSkipsInternalErrors(t *testing.T) {
	dir := t.TempDir()
	cache, err := driver.OpenDiskCacheAt(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	p := writeFile(t, dir, "ice.toml", deinitBody)

	driver.AnalyzeFile(context.Background(), p, driver.Options{Cache: cache})
	res := driver.AnalyzeFile(context.Background(), p, driver.Options{Cache: cache})
	assert.False(t, res.Cached)
	assert.True(t, res.Failed)
}

func TestContentKey(t *testing.T) {
	data := []byte("x")
	a := driver.ContentKey(data, map[string]uint64{"A": 1, "B": 2})
	b := driver.ContentKey(data, map[string]uint64{"B": 2, "A": 1})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, driver.ContentKey(data, nil))
	assert.NotEqual(t, a, driver.ContentKey(data, map[string]uint64{"A": 1, "B": 3}))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, driver.ConfigFileName, `
[analysis]
jobs = 2
cache = true
cache_dir = ".cache"

[trace]
level = "phase"

[params]
N = 8
`)
	sub := filepath.Join(dir, "bodies", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	pc, ok, err := driver.LoadProjectConfig(sub)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p, pc.Path)
	assert.Equal(t, 2, pc.Config.Analysis.Jobs)
	assert.True(t, pc.Config.Analysis.Cache)
	assert.Equal(t, filepath.Join(dir, ".cache"), pc.Config.Analysis.CacheDir)
	assert.True(t, pc.IsDefined("analysis", "jobs"))
	assert.False(t, pc.IsDefined("analysis", "max_diagnostics"))

	params, err := pc.Config.ParamValues()
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"N": 8}, params)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "[analysis]\nworkers = 2\n", "unknown keys: analysis.workers"},
		{"negative jobs", "[analysis]\njobs = -1\n", "[analysis].jobs must not be negative"},
		{"bad level", "[trace]\nlevel = \"loud\"\n", "[trace].level"},
		{"negative param", "[params]\nN = -3\n", "[params].N must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), driver.ConfigFileName, tt.content)
			_, err := driver.LoadConfig(p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
