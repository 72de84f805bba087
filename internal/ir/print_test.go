package ir_test

import (
	"strings"
	"testing"

	"cinder/internal/ir"
)

func TestWriteFunc(t *testing.T) {
	ctx := ir.NewContext()
	f := ir.NewFunc(ctx, "main")
	b0 := ir.NewBlock(ctx)
	b1 := ir.NewBlock(ctx)
	if err := f.AppendBlock(ctx, b0); err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}
	if err := f.AppendBlock(ctx, b1); err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}

	c := ir.NewConst(ctx, 7)
	mustAppend(t, ctx, b0, c)
	br, err := ir.NewBr(ctx, b1)
	if err != nil {
		t.Fatalf("NewBr: %v", err)
	}
	mustAppend(t, ctx, b0, br)
	if err := b0.AddSuccessor(ctx, b1, br, false); err != nil {
		t.Fatalf("AddSuccessor: %v", err)
	}
	mustAppend(t, ctx, b1, ir.NewRet(ctx, c))

	var sb strings.Builder
	if err := ir.WriteFunc(&sb, ctx, f); err != nil {
		t.Fatalf("WriteFunc: %v", err)
	}
	want := "fn main {\n" +
		"bb_0:\n" +
		"\t%0 = const 7\n" +
		"\tbr bb_1\n" +
		"bb_1:\n" +
		"\tret %0\n" +
		"}\n"
	if sb.String() != want {
		t.Fatalf("WriteFunc output:\n%q\nwant:\n%q", sb.String(), want)
	}
}

func TestBlockString(t *testing.T) {
	ctx := ir.NewContext()
	b := ir.NewBlock(ctx)

	got, err := ir.BlockString(ctx, b)
	if err != nil {
		t.Fatalf("BlockString: %v", err)
	}
	if got != "bb_0:" {
		t.Fatalf("empty block renders %q; want %q", got, "bb_0:")
	}

	cond := ir.NewConst(ctx, 1)
	mustAppend(t, ctx, b, cond)
	cbr, err := ir.NewCondBr(ctx, cond, b, b)
	if err != nil {
		t.Fatalf("NewCondBr: %v", err)
	}
	mustAppend(t, ctx, b, cbr)

	got, err = ir.BlockString(ctx, b)
	if err != nil {
		t.Fatalf("BlockString: %v", err)
	}
	want := "bb_0:\n\t%0 = const 1\n\tcondbr %0, bb_0, bb_0"
	if got != want {
		t.Fatalf("BlockString = %q; want %q", got, want)
	}
}
