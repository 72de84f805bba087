package ir

import (
	"fmt"
	"iter"
)

// FuncData is the arena payload of a function: a name plus the bounds
// of its block list. Everything else about functions lives outside this
// layer.
type FuncData struct {
	self Func
	name string

	head, tail Block
}

// Func is a handle to a function.
type Func struct{ ref Ref }

// NewFunc allocates a function with no blocks.
func NewFunc(ctx *Context, name string) Func {
	ref := ctx.funcs.AllocWith(func(r Ref) FuncData {
		return FuncData{self: Func{ref: r}, name: name}
	})
	return Func{ref: ref}
}

func (f Func) data(ctx *Context) (*FuncData, error) {
	d, ok := ctx.funcs.Get(f.ref)
	if !ok {
		return nil, fmt.Errorf("%w: func #%d", ErrInvalidPointer, f.ref.Index())
	}
	return d, nil
}

// Valid reports whether f still resolves to a live function.
func (f Func) Valid(ctx *Context) bool { return ctx.funcs.Valid(f.ref) }

// Name returns the function name.
func (f Func) Name(ctx *Context) (string, error) {
	d, err := f.data(ctx)
	if err != nil {
		return "", err
	}
	return d.name, nil
}

// Entry returns the first block in the list, or the zero handle.
func (f Func) Entry(ctx *Context) (Block, error) { return f.head(ctx) }

// Blocks yields f's blocks in list order. The current block may be
// removed by the loop body.
func (f Func) Blocks(ctx *Context) iter.Seq[Block] {
	return nodesForward[Block, Func](ctx, f)
}

// BlocksReverse yields f's blocks tail to head.
func (f Func) BlocksReverse(ctx *Context) iter.Seq[Block] {
	return nodesBackward[Block, Func](ctx, f)
}

// AppendBlock links b at the end of f's block list. b must be
// unattached.
func (f Func) AppendBlock(ctx *Context, b Block) error {
	return appendNode[Block, Func](ctx, f, b)
}

// PrependBlock links b at the front of f's block list. b must be
// unattached.
func (f Func) PrependBlock(ctx *Context, b Block) error {
	return prependNode[Block, Func](ctx, f, b)
}

// InsertBlockAfter links b immediately after at in f's block list.
func (f Func) InsertBlockAfter(ctx *Context, at, b Block) error {
	parent, err := at.holder(ctx)
	if err != nil {
		return err
	}
	if parent != f {
		return fmt.Errorf("%w: %s not in this function", ErrNotAttached, at.Name())
	}
	return insertAfter[Block, Func](ctx, at, b)
}

// RemoveBlock detaches b from f and destroys it: every instruction is
// unlinked and deallocated (retiring its own operand registrations on
// other blocks), the edge set is cleared, and the slot is released.
//
// A block that is still referenced from outside itself is refused with
// ErrStillReferenced: callers must retarget or remove the referencing
// branches first. Self-references (a block branching to itself) do not
// block removal, since destroying the body retires them.
func (f Func) RemoveBlock(ctx *Context, b Block) error {
	parent, err := b.holder(ctx)
	if err != nil {
		return err
	}
	if parent != f {
		return fmt.Errorf("%w: %s not in this function", ErrNotAttached, b.Name())
	}
	users, err := b.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		up, err := u.Inst().Parent(ctx)
		if err != nil {
			return err
		}
		if up != b {
			return fmt.Errorf("%w: %s used by %s in %s", ErrStillReferenced, b.Name(), u.Inst().Name(), up.Name())
		}
	}
	for i := range b.Insts(ctx) {
		if err := b.RemoveInst(ctx, i); err != nil {
			return err
		}
	}
	if err := b.ClearSuccessors(ctx); err != nil {
		return err
	}
	if err := unlinkNode[Block, Func](ctx, b); err != nil {
		return err
	}
	ctx.blocks.Dealloc(b.ref)
	return nil
}

// list container role: functions hold blocks.

func (f Func) head(ctx *Context) (Block, error) {
	d, err := f.data(ctx)
	if err != nil {
		return Block{}, err
	}
	return d.head, nil
}

func (f Func) tail(ctx *Context) (Block, error) {
	d, err := f.data(ctx)
	if err != nil {
		return Block{}, err
	}
	return d.tail, nil
}

func (f Func) setHead(ctx *Context, b Block) error {
	d, err := f.data(ctx)
	if err != nil {
		return err
	}
	d.head = b
	return nil
}

func (f Func) setTail(ctx *Context, b Block) error {
	d, err := f.data(ctx)
	if err != nil {
		return err
	}
	d.tail = b
	return nil
}
