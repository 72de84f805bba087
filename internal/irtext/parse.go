// Package irtext reads the line-oriented .cir form of cinder IR, the
// same shape the debug dump writes. It is deliberately small: one
// instruction per line, split on whitespace and commas, no expression
// grammar. Source-language parsing does not belong to this layer.
package irtext

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"cinder/internal/ir"
)

// ParsedFunc pairs a function handle with its source name.
type ParsedFunc struct {
	Name string
	Func ir.Func
}

type line struct {
	num  int
	text string
}

type fnChunk struct {
	name  string
	defAt int
	lines []line
}

// Parse builds IR for every function in src. All functions share one
// fresh Context, which is returned alongside them.
func Parse(path string, src []byte) (*ir.Context, []ParsedFunc, error) {
	chunks, err := split(path, src)
	if err != nil {
		return nil, nil, err
	}
	ctx := ir.NewContext()
	funcs := make([]ParsedFunc, 0, len(chunks))
	for _, chunk := range chunks {
		f, err := parseFn(ctx, path, chunk)
		if err != nil {
			return nil, nil, err
		}
		funcs = append(funcs, ParsedFunc{Name: chunk.name, Func: f})
	}
	return ctx, funcs, nil
}

// split separates src into one chunk per `fn name { ... }` body.
func split(path string, src []byte) ([]fnChunk, error) {
	var chunks []fnChunk
	var cur *fnChunk

	sc := bufio.NewScanner(bytes.NewReader(src))
	num := 0
	for sc.Scan() {
		num++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		switch {
		case cur == nil:
			fields := strings.Fields(text)
			if len(fields) != 3 || fields[0] != "fn" || fields[2] != "{" {
				return nil, fmt.Errorf("%s:%d: expected `fn <name> {`, got %q", path, num, text)
			}
			chunks = append(chunks, fnChunk{name: fields[1], defAt: num})
			cur = &chunks[len(chunks)-1]
		case text == "}":
			cur = nil
		default:
			cur.lines = append(cur.lines, line{num: num, text: text})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cur != nil {
		return nil, fmt.Errorf("%s:%d: fn %s is missing its closing `}`", path, cur.defAt, cur.name)
	}
	return chunks, nil
}

func parseFn(ctx *ir.Context, path string, chunk fnChunk) (ir.Func, error) {
	f := ir.NewFunc(ctx, chunk.name)

	// First pass: labels, so branches may target blocks defined later.
	blocks := make(map[string]ir.Block)
	for _, ln := range chunk.lines {
		label, ok := strings.CutSuffix(ln.text, ":")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		if label == "" || len(strings.Fields(label)) != 1 {
			return ir.Func{}, fmt.Errorf("%s:%d: bad label %q", path, ln.num, ln.text)
		}
		if _, dup := blocks[label]; dup {
			return ir.Func{}, fmt.Errorf("%s:%d: duplicate label %s", path, ln.num, label)
		}
		b := ir.NewBlock(ctx)
		if err := f.AppendBlock(ctx, b); err != nil {
			return ir.Func{}, fmt.Errorf("%s:%d: %w", path, ln.num, err)
		}
		blocks[label] = b
	}

	// Second pass: instructions.
	defs := make(map[string]ir.Inst)
	var cur ir.Block
	haveCur := false
	for _, ln := range chunk.lines {
		if label, ok := strings.CutSuffix(ln.text, ":"); ok {
			cur = blocks[strings.TrimSpace(label)]
			haveCur = true
			continue
		}
		if !haveCur {
			return ir.Func{}, fmt.Errorf("%s:%d: instruction before first label", path, ln.num)
		}
		if err := parseInst(ctx, path, ln, cur, blocks, defs); err != nil {
			return ir.Func{}, err
		}
	}
	return f, nil
}

func parseInst(ctx *ir.Context, path string, ln line, b ir.Block, blocks map[string]ir.Block, defs map[string]ir.Inst) error {
	text := ln.text
	var dst string
	if name, rhs, ok := strings.Cut(text, "="); ok {
		dst = strings.TrimSpace(name)
		text = strings.TrimSpace(rhs)
		if len(strings.Fields(dst)) != 1 {
			return fmt.Errorf("%s:%d: bad destination %q", path, ln.num, dst)
		}
	}
	fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
	if len(fields) == 0 {
		return fmt.Errorf("%s:%d: empty instruction", path, ln.num)
	}
	op, args := fields[0], fields[1:]

	lookupInst := func(name string) (ir.Inst, error) {
		i, ok := defs[name]
		if !ok {
			return ir.Inst{}, fmt.Errorf("%s:%d: undefined value %s", path, ln.num, name)
		}
		return i, nil
	}
	lookupBlock := func(name string) (ir.Block, error) {
		t, ok := blocks[name]
		if !ok {
			return ir.Block{}, fmt.Errorf("%s:%d: undefined label %s", path, ln.num, name)
		}
		return t, nil
	}

	var inst ir.Inst
	switch op {
	case "nop":
		if len(args) != 0 {
			return fmt.Errorf("%s:%d: nop takes no operands", path, ln.num)
		}
		inst = ir.NewNop(ctx)

	case "const":
		if len(args) != 1 {
			return fmt.Errorf("%s:%d: const takes one immediate", path, ln.num)
		}
		v, err := strconv.ParseInt(args[0], 0, 64)
		if err != nil {
			return fmt.Errorf("%s:%d: bad immediate %q: %w", path, ln.num, args[0], err)
		}
		inst = ir.NewConst(ctx, v)

	case "ret":
		switch len(args) {
		case 0:
			inst = ir.NewRet(ctx, ir.Inst{})
		case 1:
			v, err := lookupInst(args[0])
			if err != nil {
				return err
			}
			inst = ir.NewRet(ctx, v)
		default:
			return fmt.Errorf("%s:%d: ret takes at most one operand", path, ln.num)
		}

	case "br":
		if dst != "" {
			return fmt.Errorf("%s:%d: br does not produce a value", path, ln.num)
		}
		if len(args) != 1 {
			return fmt.Errorf("%s:%d: br takes one label", path, ln.num)
		}
		target, err := lookupBlock(args[0])
		if err != nil {
			return err
		}
		br, err := ir.NewBr(ctx, target)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, ln.num, err)
		}
		if err := b.AppendInst(ctx, br); err != nil {
			return fmt.Errorf("%s:%d: %w", path, ln.num, err)
		}
		return b.AddSuccessor(ctx, target, br, false)

	case "condbr":
		if dst != "" {
			return fmt.Errorf("%s:%d: condbr does not produce a value", path, ln.num)
		}
		if len(args) != 3 {
			return fmt.Errorf("%s:%d: condbr takes a value and two labels", path, ln.num)
		}
		cond, err := lookupInst(args[0])
		if err != nil {
			return err
		}
		then, err := lookupBlock(args[1])
		if err != nil {
			return err
		}
		els, err := lookupBlock(args[2])
		if err != nil {
			return err
		}
		cbr, err := ir.NewCondBr(ctx, cond, then, els)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, ln.num, err)
		}
		if err := b.AppendInst(ctx, cbr); err != nil {
			return fmt.Errorf("%s:%d: %w", path, ln.num, err)
		}
		if err := b.AddSuccessor(ctx, then, cbr, true); err != nil {
			return fmt.Errorf("%s:%d: %w", path, ln.num, err)
		}
		return b.AddSuccessor(ctx, els, cbr, false)

	default:
		// Any other mnemonic is a named two-operand operation.
		if len(args) != 2 {
			return fmt.Errorf("%s:%d: %s takes two operands", path, ln.num, op)
		}
		lhs, err := lookupInst(args[0])
		if err != nil {
			return err
		}
		rhs, err := lookupInst(args[1])
		if err != nil {
			return err
		}
		inst = ir.NewBinary(ctx, op, lhs, rhs)
	}

	if err := b.AppendInst(ctx, inst); err != nil {
		return fmt.Errorf("%s:%d: %w", path, ln.num, err)
	}
	if dst != "" {
		if _, dup := defs[dst]; dup {
			return fmt.Errorf("%s:%d: redefinition of %s", path, ln.num, dst)
		}
		defs[dst] = inst
	}
	return nil
}
