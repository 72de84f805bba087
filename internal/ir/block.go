package ir

import (
	"fmt"
	"iter"
	"sort"
)

// Edge is one directed control-flow transfer: the terminator Term in
// the owning block jumps to To. TrueArm distinguishes the two arms of a
// conditional branch, so both arms stay distinct set members even when
// they target the same block.
type Edge struct {
	To      Block
	Term    Inst
	TrueArm bool
}

// BlockData is the arena payload of a basic block.
type BlockData struct {
	self Block

	// operand slots elsewhere in the IR currently referencing this block
	users map[User]struct{}

	// linear order among sibling blocks
	next, prev Block
	parent     Func

	// outgoing CFG edges; predecessors are computed on demand
	successors map[Edge]struct{}

	// instruction list bounds
	head, tail Inst
}

// Block is a handle to a basic block.
type Block struct{ ref Ref }

// NewBlock allocates an empty, unattached block: no instructions, no
// successors, no users.
func NewBlock(ctx *Context) Block {
	ref := ctx.blocks.AllocWith(func(r Ref) BlockData {
		return BlockData{
			self:       Block{ref: r},
			users:      make(map[User]struct{}),
			successors: make(map[Edge]struct{}),
		}
	})
	return Block{ref: ref}
}

func (b Block) data(ctx *Context) (*BlockData, error) {
	d, ok := ctx.blocks.Get(b.ref)
	if !ok {
		return nil, fmt.Errorf("%w: block %s", ErrInvalidPointer, b.Name())
	}
	return d, nil
}

// Valid reports whether b still resolves to a live block.
func (b Block) Valid(ctx *Context) bool { return ctx.blocks.Valid(b.ref) }

// Name returns a debug label derived from the arena slot index. It is
// not stable across edits that reuse slots; diagnostics only, never
// semantic identity.
func (b Block) Name() string { return fmt.Sprintf("bb_%d", b.ref.Index()) }

// Parent returns the function currently holding b, or the zero handle.
func (b Block) Parent(ctx *Context) (Func, error) { return b.holder(ctx) }

// Next returns the next sibling block, or the zero handle.
func (b Block) Next(ctx *Context) (Block, error) { return b.next(ctx) }

// Prev returns the previous sibling block, or the zero handle.
func (b Block) Prev(ctx *Context) (Block, error) { return b.prev(ctx) }

// FirstInst returns the head of b's instruction list, or the zero handle.
func (b Block) FirstInst(ctx *Context) (Inst, error) { return b.head(ctx) }

// LastInst returns the tail of b's instruction list, or the zero handle.
func (b Block) LastInst(ctx *Context) (Inst, error) { return b.tail(ctx) }

// Terminator returns the last instruction when it is one, or the zero
// handle for an empty or unterminated block.
func (b Block) Terminator(ctx *Context) (Inst, error) {
	tail, err := b.tail(ctx)
	if err != nil || tail == (Inst{}) {
		return Inst{}, err
	}
	op, err := tail.Op(ctx)
	if err != nil {
		return Inst{}, err
	}
	if !op.IsTerminator() {
		return Inst{}, nil
	}
	return tail, nil
}

// Insts yields b's instructions head to tail. The current instruction
// may be unlinked by the loop body.
func (b Block) Insts(ctx *Context) iter.Seq[Inst] {
	return nodesForward[Inst, Block](ctx, b)
}

// InstsReverse yields b's instructions tail to head.
func (b Block) InstsReverse(ctx *Context) iter.Seq[Inst] {
	return nodesBackward[Inst, Block](ctx, b)
}

// AppendInst links i at the end of b's instruction list. i must not be
// in any block.
func (b Block) AppendInst(ctx *Context, i Inst) error {
	return appendNode[Inst, Block](ctx, b, i)
}

// PrependInst links i at the front of b's instruction list. i must not
// be in any block.
func (b Block) PrependInst(ctx *Context, i Inst) error {
	return prependNode[Inst, Block](ctx, b, i)
}

// RemoveInst unlinks i from b and releases its slot. i must currently
// belong to b.
func (b Block) RemoveInst(ctx *Context, i Inst) error {
	parent, err := i.holder(ctx)
	if err != nil {
		return err
	}
	if parent != b {
		return fmt.Errorf("%w: %s not in %s", ErrNotInBlock, i.Name(), b.Name())
	}
	if err := i.Unlink(ctx); err != nil {
		return err
	}
	return i.Dispose(ctx)
}

// Remove asks the owning function to detach and destroy b. Only the
// container can do this safely: it alone enumerates every external
// reference that must be gone first.
func (b Block) Remove(ctx *Context) error {
	parent, err := b.holder(ctx)
	if err != nil {
		return err
	}
	if parent == (Func{}) {
		return fmt.Errorf("%w: remove of %s", ErrNotAttached, b.Name())
	}
	return parent.RemoveBlock(ctx, b)
}

// AddSuccessor records the control-flow edge b -> target carried by
// term. An unconditional branch records a single false-arm edge; a
// conditional branch records the given arm, so both arms may coexist.
// Any other opcode is a precondition violation.
func (b Block) AddSuccessor(ctx *Context, target Block, term Inst, trueArm bool) error {
	op, err := term.Op(ctx)
	if err != nil {
		return err
	}
	var edge Edge
	switch op {
	case OpBr:
		edge = Edge{To: target, Term: term, TrueArm: false}
	case OpCondBr:
		edge = Edge{To: target, Term: term, TrueArm: trueArm}
	default:
		return fmt.Errorf("%w: add successor via %s %s", ErrNotABranch, op, term.Name())
	}
	d, err := b.data(ctx)
	if err != nil {
		return err
	}
	d.successors[edge] = struct{}{}
	return nil
}

// RemoveSuccessor retires the edge b -> target carried by term.
//
// For an unconditional branch the edge and the branch itself are
// removed, leaving b unterminated; supplying a new terminator is the
// caller's business.
//
// For a conditional branch the whole instruction is retired and
// replaced by an unconditional jump to the surviving arm: both recorded
// arm edges are dropped, a fresh br is spliced in immediately after the
// old terminator, the old terminator is then unlinked and deallocated,
// and exactly one edge is re-recorded for the new br. Inserting before
// removing keeps the block terminated at every step, so an in-progress
// traversal never sees a block with no terminator.
func (b Block) RemoveSuccessor(ctx *Context, target Block, term Inst, trueArm bool) error {
	op, err := term.Op(ctx)
	if err != nil {
		return err
	}
	switch op {
	case OpBr:
		d, err := b.data(ctx)
		if err != nil {
			return err
		}
		delete(d.successors, Edge{To: target, Term: term, TrueArm: false})
		if err := term.Unlink(ctx); err != nil {
			return err
		}
		return term.Dispose(ctx)

	case OpCondBr:
		surviveIdx := 0
		if trueArm {
			surviveIdx = 1
		}
		survivor, err := term.Successor(ctx, surviveIdx)
		if err != nil {
			return err
		}
		d, err := b.data(ctx)
		if err != nil {
			return err
		}
		delete(d.successors, Edge{To: target, Term: term, TrueArm: trueArm})
		delete(d.successors, Edge{To: survivor, Term: term, TrueArm: !trueArm})

		br, err := NewBr(ctx, survivor)
		if err != nil {
			return err
		}
		if err := term.InsertAfter(ctx, br); err != nil {
			return err
		}
		if err := term.Unlink(ctx); err != nil {
			return err
		}
		if err := term.Dispose(ctx); err != nil {
			return err
		}
		return b.AddSuccessor(ctx, survivor, br, false)

	default:
		return fmt.Errorf("%w: remove successor via %s %s", ErrNotABranch, op, term.Name())
	}
}

// ClearSuccessors drops every recorded edge without touching the
// instruction list.
func (b Block) ClearSuccessors(ctx *Context) error {
	d, err := b.data(ctx)
	if err != nil {
		return err
	}
	d.successors = make(map[Edge]struct{})
	return nil
}

// CopySuccessors replaces b's edge set with edges. Passes use it to
// relocate a whole edge set between blocks atomically.
func (b Block) CopySuccessors(ctx *Context, edges []Edge) error {
	d, err := b.data(ctx)
	if err != nil {
		return err
	}
	set := make(map[Edge]struct{}, len(edges))
	for _, e := range edges {
		set[e] = struct{}{}
	}
	d.successors = set
	return nil
}

// Successors returns b's edges sorted by (target slot, arm) for
// deterministic output.
func (b Block) Successors(ctx *Context) ([]Edge, error) {
	d, err := b.data(ctx)
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, len(d.successors))
	for e := range d.successors {
		edges = append(edges, e)
	}
	sortEdges(edges)
	return edges, nil
}

// HasSuccessor reports whether the exact edge is recorded on b.
func (b Block) HasSuccessor(ctx *Context, e Edge) (bool, error) {
	d, err := b.data(ctx)
	if err != nil {
		return false, err
	}
	_, ok := d.successors[e]
	return ok, nil
}

// NumSuccessors returns the size of b's edge set.
func (b Block) NumSuccessors(ctx *Context) (int, error) {
	d, err := b.data(ctx)
	if err != nil {
		return 0, err
	}
	return len(d.successors), nil
}

// Preds computes b's predecessors by scanning sibling blocks' successor
// sets. No predecessor set is maintained: the scan costs O(siblings)
// but needs no second bookkeeping structure kept in lock-step with the
// first. An unattached block has no predecessors.
func (b Block) Preds(ctx *Context) ([]Block, error) {
	fn, err := b.holder(ctx)
	if err != nil {
		return nil, err
	}
	if fn == (Func{}) {
		return nil, nil
	}
	var preds []Block
	for sib := range fn.Blocks(ctx) {
		d, err := sib.data(ctx)
		if err != nil {
			return nil, err
		}
		for e := range d.successors {
			if e.To == b {
				preds = append(preds, sib)
				break
			}
		}
	}
	return preds, nil
}

// Users returns the operand slots currently referencing b, sorted by
// (instruction slot, operand index).
func (b Block) Users(ctx *Context) ([]User, error) {
	d, err := b.data(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(d.users))
	for u := range d.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].inst.ref.Index() != users[j].inst.ref.Index() {
			return users[i].inst.ref.Index() < users[j].inst.ref.Index()
		}
		return users[i].index < users[j].index
	})
	return users, nil
}

// NumUsers returns the size of b's user set.
func (b Block) NumUsers(ctx *Context) (int, error) {
	d, err := b.data(ctx)
	if err != nil {
		return 0, err
	}
	return len(d.users), nil
}

// def-use role.

func (b Block) insertUser(ctx *Context, u User) error {
	d, err := b.data(ctx)
	if err != nil {
		return err
	}
	d.users[u] = struct{}{}
	return nil
}

func (b Block) removeUser(ctx *Context, u User) error {
	d, err := b.data(ctx)
	if err != nil {
		return err
	}
	delete(d.users, u)
	return nil
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].To.ref.Index() != edges[j].To.ref.Index() {
			return edges[i].To.ref.Index() < edges[j].To.ref.Index()
		}
		if edges[i].TrueArm != edges[j].TrueArm {
			return !edges[i].TrueArm
		}
		return edges[i].Term.ref.Index() < edges[j].Term.ref.Index()
	})
}

// list container role: blocks hold instructions.

func (b Block) head(ctx *Context) (Inst, error) {
	d, err := b.data(ctx)
	if err != nil {
		return Inst{}, err
	}
	return d.head, nil
}

func (b Block) tail(ctx *Context) (Inst, error) {
	d, err := b.data(ctx)
	if err != nil {
		return Inst{}, err
	}
	return d.tail, nil
}

func (b Block) setHead(ctx *Context, i Inst) error {
	d, err := b.data(ctx)
	if err != nil {
		return err
	}
	d.head = i
	return nil
}

func (b Block) setTail(ctx *Context, i Inst) error {
	d, err := b.data(ctx)
	if err != nil {
		return err
	}
	d.tail = i
	return nil
}

// list node role: blocks are held by functions.

func (b Block) next(ctx *Context) (Block, error) {
	d, err := b.data(ctx)
	if err != nil {
		return Block{}, err
	}
	return d.next, nil
}

func (b Block) prev(ctx *Context) (Block, error) {
	d, err := b.data(ctx)
	if err != nil {
		return Block{}, err
	}
	return d.prev, nil
}

func (b Block) setNext(ctx *Context, next Block) error {
	d, err := b.data(ctx)
	if err != nil {
		return err
	}
	d.next = next
	return nil
}

func (b Block) setPrev(ctx *Context, prev Block) error {
	d, err := b.data(ctx)
	if err != nil {
		return err
	}
	d.prev = prev
	return nil
}

func (b Block) holder(ctx *Context) (Func, error) {
	d, err := b.data(ctx)
	if err != nil {
		return Func{}, err
	}
	return d.parent, nil
}

func (b Block) setHolder(ctx *Context, f Func) error {
	d, err := b.data(ctx)
	if err != nil {
		return err
	}
	d.parent = f
	return nil
}

var _ usable = Block{}
