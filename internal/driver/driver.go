// Package driver runs the IR tooling over files: parse a .cir file into
// a fresh ir.Context, dump it, or validate every function in it.
package driver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cinder/internal/ir"
	"cinder/internal/irtext"
)

// Result is the outcome of checking one file.
type Result struct {
	Path  string
	Funcs int
	Err   error
}

// Ok reports whether the file parsed and every function validated.
func (r Result) Ok() bool { return r.Err == nil }

// CheckFile parses path and validates every function it defines. Parse
// failures and validation failures both land in Result.Err.
func CheckFile(path string) Result {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	ctx, funcs, err := irtext.Parse(path, src)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	var errs []error
	for _, pf := range funcs {
		if err := ir.Validate(ctx, pf.Func); err != nil {
			errs = append(errs, fmt.Errorf("%s: fn %s: %w", path, pf.Name, err))
		}
	}
	return Result{Path: path, Funcs: len(funcs), Err: errors.Join(errs...)}
}

// DumpFile parses path and writes every function's listing to w.
func DumpFile(w io.Writer, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ctx, funcs, err := irtext.Parse(path, src)
	if err != nil {
		return err
	}
	for k, pf := range funcs {
		if k > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := ir.WriteFunc(w, ctx, pf.Func); err != nil {
			return err
		}
	}
	return nil
}

// ListIRFiles returns the sorted relative paths of every .cir file
// under dir.
func ListIRFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".cir") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// ExpandPaths resolves a mix of files and directories into the flat
// list of .cir files to process, in stable order.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			sub, err := ListIRFiles(p)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}
		files = append(files, p)
	}
	return files, nil
}
