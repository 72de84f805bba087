package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cinder/internal/driver"
)

const goodSrc = `
fn main {
entry:
	x = const 1
	condbr x, then, done
then:
	br done
done:
	ret
}
`

// badSrc parses but fails validation: the block never terminates.
const badSrc = `
fn broken {
entry:
	x = const 1
}
`

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
	return path
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.cir", goodSrc)
	bad := writeFile(t, dir, "bad.cir", badSrc)

	res := driver.CheckFile(good)
	if !res.Ok() {
		t.Fatalf("CheckFile(good) = %v", res.Err)
	}
	if res.Funcs != 1 {
		t.Fatalf("CheckFile(good).Funcs = %d; want 1", res.Funcs)
	}

	res = driver.CheckFile(bad)
	if res.Ok() {
		t.Fatal("CheckFile(bad) reported ok")
	}
	if !strings.Contains(res.Err.Error(), "unterminated") {
		t.Fatalf("CheckFile(bad) error %q misses the violation", res.Err)
	}

	res = driver.CheckFile(filepath.Join(dir, "absent.cir"))
	if res.Ok() {
		t.Fatal("CheckFile(absent) reported ok")
	}
}

func TestDumpFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.cir", goodSrc)

	var sb strings.Builder
	if err := driver.DumpFile(&sb, good); err != nil {
		t.Fatalf("DumpFile: %v", err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "fn main {") {
		t.Fatalf("dump starts with %q", out)
	}
	for _, want := range []string{"bb_0:", "bb_1:", "bb_2:", "condbr", "\tret"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump %q misses %q", out, want)
		}
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.cir", goodSrc)
	b := writeFile(t, dir, "b.cir", goodSrc)
	writeFile(t, dir, "notes.txt", "not ir")

	files, err := driver.ExpandPaths([]string{dir})
	if err != nil {
		t.Fatalf("ExpandPaths: %v", err)
	}
	if len(files) != 2 || files[0] != a || files[1] != b {
		t.Fatalf("ExpandPaths = %v; want [%s %s]", files, a, b)
	}

	files, err = driver.ExpandPaths([]string{b, a})
	if err != nil {
		t.Fatalf("ExpandPaths(files): %v", err)
	}
	if len(files) != 2 || files[0] != b || files[1] != a {
		t.Fatalf("explicit files reordered: %v", files)
	}

	if _, err := driver.ExpandPaths([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("ExpandPaths accepted a missing path")
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *recordingSink) OnEvent(evt driver.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *recordingSink) byStatus(status driver.Status) []driver.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []driver.Event
	for _, evt := range s.events {
		if evt.Status == status {
			out = append(out, evt)
		}
	}
	return out
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.cir", goodSrc)
	bad := writeFile(t, dir, "bad.cir", badSrc)

	sink := &recordingSink{}
	results, err := driver.CheckFiles(context.Background(), []string{good, bad}, 2, sink)
	if err != nil {
		t.Fatalf("CheckFiles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results; want 2", len(results))
	}
	if results[0].Path != good || !results[0].Ok() {
		t.Fatalf("results[0] = %+v; want clean %s", results[0], good)
	}
	if results[1].Path != bad || results[1].Ok() {
		t.Fatalf("results[1] = %+v; want failing %s", results[1], bad)
	}

	if n := len(sink.byStatus(driver.StatusQueued)); n != 2 {
		t.Fatalf("%d queued events; want 2", n)
	}
	if n := len(sink.byStatus(driver.StatusDone)); n != 1 {
		t.Fatalf("%d done events; want 1", n)
	}
	errored := sink.byStatus(driver.StatusError)
	if len(errored) != 1 || errored[0].File != bad || errored[0].Err == nil {
		t.Fatalf("error events = %v; want one for %s", errored, bad)
	}
}

func TestCheckFilesNilSink(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.cir", goodSrc)

	results, err := driver.CheckFiles(context.Background(), []string{good}, 0, nil)
	if err != nil {
		t.Fatalf("CheckFiles: %v", err)
	}
	if len(results) != 1 || !results[0].Ok() {
		t.Fatalf("results = %v; want one clean result", results)
	}
}
