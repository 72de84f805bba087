package ir

import (
	"fmt"
	"io"
	"strings"
)

// WriteBlock writes the debug rendering of b: a `bb_<slot>:` label line
// followed by one tab-indented line per instruction in list order.
func WriteBlock(w io.Writer, ctx *Context, b Block) error {
	if _, err := fmt.Fprintf(w, "%s:", b.Name()); err != nil {
		return err
	}
	for i := range b.Insts(ctx) {
		line, err := i.Render(ctx)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\n\t%s", line); err != nil {
			return err
		}
	}
	return nil
}

// WriteFunc writes f as a `fn <name> { ... }` listing with one block
// dump per block in list order.
func WriteFunc(w io.Writer, ctx *Context, f Func) error {
	name, err := f.Name(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "fn %s {", name); err != nil {
		return err
	}
	for b := range f.Blocks(ctx) {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := WriteBlock(w, ctx, b); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "\n}\n")
	return err
}

// BlockString returns WriteBlock's output as a string.
func BlockString(ctx *Context, b Block) (string, error) {
	var sb strings.Builder
	if err := WriteBlock(&sb, ctx, b); err != nil {
		return "", err
	}
	return sb.String(), nil
}
