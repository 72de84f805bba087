package ir

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of f's blocks, lists, edges
// and def-use records. It returns every violation found, joined.
func Validate(ctx *Context, f Func) error {
	if !f.Valid(ctx) {
		return fmt.Errorf("%w: func #%d", ErrInvalidPointer, f.ref.Index())
	}
	var errs []error
	if err := validateBlockList(ctx, f); err != nil {
		errs = append(errs, err)
	}
	if err := validateInstLists(ctx, f); err != nil {
		errs = append(errs, err)
	}
	if err := validateTerminators(ctx, f); err != nil {
		errs = append(errs, err)
	}
	if err := validateEdges(ctx, f); err != nil {
		errs = append(errs, err)
	}
	if err := validateUsers(ctx, f); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// validateBlockList checks that the block list is symmetric and every
// block's container is f.
func validateBlockList(ctx *Context, f Func) error {
	var errs []error
	var forward []Block
	seen := make(map[Block]struct{})
	for b := range f.Blocks(ctx) {
		if _, dup := seen[b]; dup {
			return fmt.Errorf("block list of func #%d revisits %s", f.ref.Index(), b.Name())
		}
		seen[b] = struct{}{}
		forward = append(forward, b)
		parent, err := b.Parent(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if parent != f {
			errs = append(errs, fmt.Errorf("%s: container is not the walked function", b.Name()))
		}
	}
	i := len(forward)
	for b := range f.BlocksReverse(ctx) {
		i--
		if i < 0 || forward[i] != b {
			errs = append(errs, fmt.Errorf("block list of func #%d: backward walk disagrees with forward walk", f.ref.Index()))
			break
		}
	}
	if i > 0 {
		errs = append(errs, fmt.Errorf("block list of func #%d: backward walk is shorter than forward walk", f.ref.Index()))
	}
	return errors.Join(errs...)
}

// validateInstLists checks each block's instruction list the same way.
func validateInstLists(ctx *Context, f Func) error {
	var errs []error
	for b := range f.Blocks(ctx) {
		var forward []Inst
		seen := make(map[Inst]struct{})
		broken := false
		for i := range b.Insts(ctx) {
			if _, dup := seen[i]; dup {
				errs = append(errs, fmt.Errorf("%s: instruction list revisits %s", b.Name(), i.Name()))
				broken = true
				break
			}
			seen[i] = struct{}{}
			forward = append(forward, i)
			parent, err := i.Parent(ctx)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
				continue
			}
			if parent != b {
				errs = append(errs, fmt.Errorf("%s: %s has container %s", b.Name(), i.Name(), parent.Name()))
			}
		}
		if broken {
			continue
		}
		k := len(forward)
		for i := range b.InstsReverse(ctx) {
			k--
			if k < 0 || forward[k] != i {
				errs = append(errs, fmt.Errorf("%s: backward walk disagrees with forward walk", b.Name()))
				break
			}
		}
		if k > 0 {
			errs = append(errs, fmt.Errorf("%s: backward walk is shorter than forward walk", b.Name()))
		}
	}
	return errors.Join(errs...)
}

// validateTerminators checks that every block ends with a terminator
// and that terminators appear only at the tail.
func validateTerminators(ctx *Context, f Func) error {
	var errs []error
	for b := range f.Blocks(ctx) {
		term, err := b.Terminator(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		if term == (Inst{}) {
			errs = append(errs, fmt.Errorf("%s: unterminated block", b.Name()))
		}
		tail, err := b.LastInst(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for i := range b.Insts(ctx) {
			if i == tail {
				continue
			}
			op, err := i.Op(ctx)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
				continue
			}
			if op.IsTerminator() {
				errs = append(errs, fmt.Errorf("%s: terminator %s %s before end of block", b.Name(), op, i.Name()))
			}
		}
	}
	return errors.Join(errs...)
}

// validateEdges checks both directions of invariants 2 and 3: every
// recorded edge is carried by a branch linked in the block with the arm
// shape its opcode demands, and every linked branch has its edges
// recorded.
func validateEdges(ctx *Context, f Func) error {
	var errs []error
	for b := range f.Blocks(ctx) {
		edges, err := b.Successors(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		byTerm := make(map[Inst][]Edge)
		for _, e := range edges {
			byTerm[e.Term] = append(byTerm[e.Term], e)
		}
		for term, te := range byTerm {
			parent, err := term.Parent(ctx)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: edge terminator %s: %w", b.Name(), term.Name(), err))
				continue
			}
			if parent != b {
				errs = append(errs, fmt.Errorf("%s: edge terminator %s not linked in block", b.Name(), term.Name()))
				continue
			}
			op, err := term.Op(ctx)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			switch op {
			case OpBr:
				if len(te) != 1 || te[0].TrueArm {
					errs = append(errs, fmt.Errorf("%s: br %s must carry exactly one false-arm edge, has %d", b.Name(), term.Name(), len(te)))
					continue
				}
				target, err := term.Successor(ctx, 0)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				if te[0].To != target {
					errs = append(errs, fmt.Errorf("%s: br %s edge targets %s, operand says %s", b.Name(), term.Name(), te[0].To.Name(), target.Name()))
				}
			case OpCondBr:
				if len(te) != 2 || te[0].TrueArm == te[1].TrueArm {
					errs = append(errs, fmt.Errorf("%s: condbr %s must carry one edge per arm, has %d", b.Name(), term.Name(), len(te)))
					continue
				}
				for _, e := range te {
					idx := 1
					if e.TrueArm {
						idx = 0
					}
					target, err := term.Successor(ctx, idx)
					if err != nil {
						errs = append(errs, err)
						continue
					}
					if e.To != target {
						errs = append(errs, fmt.Errorf("%s: condbr %s arm edge targets %s, operand says %s", b.Name(), term.Name(), e.To.Name(), target.Name()))
					}
				}
			default:
				errs = append(errs, fmt.Errorf("%s: edge carried by non-branch %s %s", b.Name(), op, term.Name()))
			}
		}
		for i := range b.Insts(ctx) {
			op, err := i.Op(ctx)
			if err != nil {
				continue
			}
			if (op == OpBr || op == OpCondBr) && len(byTerm[i]) == 0 {
				errs = append(errs, fmt.Errorf("%s: branch %s has no recorded edges", b.Name(), i.Name()))
			}
		}
	}
	return errors.Join(errs...)
}

// validateUsers recomputes the expected user set of every block from
// the operand positions across f and compares it with the recorded one.
func validateUsers(ctx *Context, f Func) error {
	var errs []error
	expected := make(map[Block]map[User]struct{})
	for b := range f.Blocks(ctx) {
		expected[b] = make(map[User]struct{})
	}
	for b := range f.Blocks(ctx) {
		for i := range b.Insts(ctx) {
			n, err := i.NumSuccessors(ctx)
			if err != nil {
				continue
			}
			for idx := 0; idx < n; idx++ {
				target, err := i.Successor(ctx, idx)
				if err != nil {
					continue
				}
				if set, ok := expected[target]; ok {
					set[User{inst: i, index: idx}] = struct{}{}
				}
			}
		}
	}
	for b, want := range expected {
		got, err := b.Users(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, u := range got {
			if _, ok := want[u]; !ok {
				errs = append(errs, fmt.Errorf("%s: stale user %s operand %d", b.Name(), u.Inst().Name(), u.Index()))
			}
		}
		if len(got) != len(want) {
			errs = append(errs, fmt.Errorf("%s: user set has %d entries, operands say %d", b.Name(), len(got), len(want)))
		}
	}
	return errors.Join(errs...)
}
