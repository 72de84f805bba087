package irtext_test

import (
	"strings"
	"testing"

	"cinder/internal/ir"
	"cinder/internal/irtext"
)

const diamond = `
# branch both ways, then join
fn main {
entry:
	x = const 2
	y = const 3
	c = cmp x, y
	condbr c, left, right
left:
	br join
right:
	br join
join:
	ret x
}
`

func TestParseDiamond(t *testing.T) {
	ctx, funcs, err := irtext.Parse("diamond.cir", []byte(diamond))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(funcs) != 1 || funcs[0].Name != "main" {
		t.Fatalf("funcs = %v; want one main", funcs)
	}
	f := funcs[0].Func

	if err := ir.Validate(ctx, f); err != nil {
		t.Fatalf("Validate of parsed IR: %v", err)
	}

	var order []ir.Block
	for b := range f.Blocks(ctx) {
		order = append(order, b)
	}
	if len(order) != 4 {
		t.Fatalf("parsed %d blocks; want 4", len(order))
	}

	entry := order[0]
	succs, err := entry.Successors(ctx)
	if err != nil {
		t.Fatalf("Successors: %v", err)
	}
	if len(succs) != 2 {
		t.Fatalf("entry has %d edges; want 2", len(succs))
	}
	join := order[3]
	preds, err := join.Preds(ctx)
	if err != nil {
		t.Fatalf("Preds: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("join has %d predecessors; want 2", len(preds))
	}
}

func TestParseMultipleFuncsShareContext(t *testing.T) {
	src := `
fn a {
b0:
	ret
}

fn b {
b0:
	v = const 1
	ret v
}
`
	ctx, funcs, err := irtext.Parse("two.cir", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(funcs) != 2 {
		t.Fatalf("parsed %d funcs; want 2", len(funcs))
	}
	for _, pf := range funcs {
		if err := ir.Validate(ctx, pf.Func); err != nil {
			t.Fatalf("Validate(%s): %v", pf.Name, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing_fn_header",
			src:  "bb0:\n\tret\n",
			want: "expected `fn <name> {`",
		},
		{
			name: "unclosed_fn",
			src:  "fn f {\nbb0:\n\tret\n",
			want: "missing its closing",
		},
		{
			name: "undefined_label",
			src:  "fn f {\nbb0:\n\tbr nowhere\n}\n",
			want: "undefined label",
		},
		{
			name: "undefined_value",
			src:  "fn f {\nbb0:\n\tret x\n}\n",
			want: "undefined value",
		},
		{
			name: "instruction_outside_block",
			src:  "fn f {\n\tret\nbb0:\n\tret\n}\n",
			want: "before first label",
		},
		{
			name: "duplicate_label",
			src:  "fn f {\nbb0:\n\tret\nbb0:\n\tret\n}\n",
			want: "duplicate label",
		},
		{
			name: "redefined_value",
			src:  "fn f {\nbb0:\n\tx = const 1\n\tx = const 2\n\tret\n}\n",
			want: "redefinition",
		},
		{
			name: "named_br",
			src:  "fn f {\nbb0:\n\tx = br bb0\n}\n",
			want: "br does not produce a value",
		},
		{
			name: "named_condbr",
			src:  "fn f {\nbb0:\n\tc = const 1\n\tx = condbr c, bb0, bb0\n}\n",
			want: "condbr does not produce a value",
		},
		{
			name: "bad_immediate",
			src:  "fn f {\nbb0:\n\tx = const lots\n\tret\n}\n",
			want: "bad immediate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := irtext.Parse(tt.name+".cir", []byte(tt.src))
			if err == nil {
				t.Fatal("Parse accepted malformed input")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
			if !strings.Contains(err.Error(), tt.name+".cir") {
				t.Fatalf("error %q does not carry the file path", err)
			}
		})
	}
}
