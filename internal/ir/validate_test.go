package ir_test

import (
	"strings"
	"testing"

	"cinder/internal/ir"
)

// buildDiamond returns a validated-clean diamond CFG:
//
//	b0 -condbr-> b1, b2; b1, b2 -br-> b3; b3 ret.
func buildDiamond(t *testing.T, ctx *ir.Context) (ir.Func, []ir.Block) {
	t.Helper()
	f, blocks := newAttachedBlocks(t, ctx, 4)
	b0, b1, b2, b3 := blocks[0], blocks[1], blocks[2], blocks[3]

	cond := ir.NewConst(ctx, 1)
	mustAppend(t, ctx, b0, cond)
	cbr, err := ir.NewCondBr(ctx, cond, b1, b2)
	if err != nil {
		t.Fatalf("NewCondBr: %v", err)
	}
	mustAppend(t, ctx, b0, cbr)
	if err := b0.AddSuccessor(ctx, b1, cbr, true); err != nil {
		t.Fatalf("AddSuccessor: %v", err)
	}
	if err := b0.AddSuccessor(ctx, b2, cbr, false); err != nil {
		t.Fatalf("AddSuccessor: %v", err)
	}

	for _, b := range []ir.Block{b1, b2} {
		br, err := ir.NewBr(ctx, b3)
		if err != nil {
			t.Fatalf("NewBr: %v", err)
		}
		mustAppend(t, ctx, b, br)
		if err := b.AddSuccessor(ctx, b3, br, false); err != nil {
			t.Fatalf("AddSuccessor: %v", err)
		}
	}
	mustAppend(t, ctx, b3, ir.NewRet(ctx, ir.Inst{}))
	return f, blocks
}

func TestValidateCleanCFG(t *testing.T) {
	ctx := ir.NewContext()
	f, _ := buildDiamond(t, ctx)
	if err := ir.Validate(ctx, f); err != nil {
		t.Fatalf("Validate of clean CFG: %v", err)
	}
}

func TestValidateFindsViolations(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T, ctx *ir.Context) ir.Func
		want  string
	}{
		{
			name: "unterminated_block",
			build: func(t *testing.T, ctx *ir.Context) ir.Func {
				f, blocks := newAttachedBlocks(t, ctx, 1)
				mustAppend(t, ctx, blocks[0], ir.NewConst(ctx, 1))
				return f
			},
			want: "unterminated block",
		},
		{
			name: "branch_without_recorded_edges",
			build: func(t *testing.T, ctx *ir.Context) ir.Func {
				f, blocks := newAttachedBlocks(t, ctx, 2)
				br, err := ir.NewBr(ctx, blocks[1])
				if err != nil {
					t.Fatalf("NewBr: %v", err)
				}
				mustAppend(t, ctx, blocks[0], br)
				mustAppend(t, ctx, blocks[1], ir.NewRet(ctx, ir.Inst{}))
				return f
			},
			want: "no recorded edges",
		},
		{
			name: "edge_terminator_not_linked",
			build: func(t *testing.T, ctx *ir.Context) ir.Func {
				f, blocks := newAttachedBlocks(t, ctx, 2)
				b0, b1 := blocks[0], blocks[1]
				br, err := ir.NewBr(ctx, b1)
				if err != nil {
					t.Fatalf("NewBr: %v", err)
				}
				mustAppend(t, ctx, b0, br)
				if err := b0.AddSuccessor(ctx, b1, br, false); err != nil {
					t.Fatalf("AddSuccessor: %v", err)
				}
				// Unlink the terminator but leave its edge behind.
				if err := br.Unlink(ctx); err != nil {
					t.Fatalf("Unlink: %v", err)
				}
				mustAppend(t, ctx, b1, ir.NewRet(ctx, ir.Inst{}))
				return f
			},
			want: "not linked in block",
		},
		{
			name: "terminator_mid_block",
			build: func(t *testing.T, ctx *ir.Context) ir.Func {
				f, blocks := newAttachedBlocks(t, ctx, 1)
				b := blocks[0]
				mustAppend(t, ctx, b, ir.NewRet(ctx, ir.Inst{}))
				mustAppend(t, ctx, b, ir.NewRet(ctx, ir.Inst{}))
				return f
			},
			want: "before end of block",
		},
		{
			name: "condbr_with_single_edge",
			build: func(t *testing.T, ctx *ir.Context) ir.Func {
				f, blocks := newAttachedBlocks(t, ctx, 3)
				b0, b1, b2 := blocks[0], blocks[1], blocks[2]
				cond := ir.NewConst(ctx, 1)
				mustAppend(t, ctx, b0, cond)
				cbr, err := ir.NewCondBr(ctx, cond, b1, b2)
				if err != nil {
					t.Fatalf("NewCondBr: %v", err)
				}
				mustAppend(t, ctx, b0, cbr)
				if err := b0.AddSuccessor(ctx, b1, cbr, true); err != nil {
					t.Fatalf("AddSuccessor: %v", err)
				}
				mustAppend(t, ctx, b1, ir.NewRet(ctx, ir.Inst{}))
				mustAppend(t, ctx, b2, ir.NewRet(ctx, ir.Inst{}))
				return f
			},
			want: "one edge per arm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ir.NewContext()
			f := tt.build(t, ctx)
			err := ir.Validate(ctx, f)
			if err == nil {
				t.Fatal("Validate accepted malformed IR")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate error %q does not mention %q", err, tt.want)
			}
		})
	}
}
