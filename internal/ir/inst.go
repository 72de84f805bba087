package ir

import (
	"fmt"
	"strings"
)

// Opcode identifies an instruction kind. The CFG layer only ever
// dispatches on three cases: unconditional branch, conditional branch,
// everything else.
type Opcode uint8

const (
	// OpNop does nothing.
	OpNop Opcode = iota
	// OpConst materializes an integer constant.
	OpConst
	// OpBinary applies a named two-operand operation.
	OpBinary
	// OpRet returns from the function, optionally with a value.
	OpRet
	// OpBr jumps unconditionally to its single block operand.
	OpBr
	// OpCondBr jumps to block operand 0 when its condition is true,
	// block operand 1 otherwise.
	OpCondBr
)

var opcodeNames = [...]string{
	OpNop:    "nop",
	OpConst:  "const",
	OpBinary: "binary",
	OpRet:    "ret",
	OpBr:     "br",
	OpCondBr: "condbr",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "unknown"
}

// IsTerminator reports whether op ends a block.
func (op Opcode) IsTerminator() bool {
	return op == OpRet || op == OpBr || op == OpCondBr
}

// InstData is the arena payload of an instruction.
type InstData struct {
	self Inst
	op   Opcode

	// straight-line payload
	binop string // OpBinary operation name
	value int64  // OpConst immediate

	args   []Inst  // value operands: results of other instructions
	blocks []Block // block operands: br target, condbr then/else

	next, prev Inst
	parent     Block
}

// Inst is a handle to an instruction.
type Inst struct{ ref Ref }

func newInst(ctx *Context, data InstData) Inst {
	ref := ctx.insts.AllocWith(func(r Ref) InstData {
		data.self = Inst{ref: r}
		return data
	})
	return Inst{ref: ref}
}

// NewNop allocates a nop instruction.
func NewNop(ctx *Context) Inst {
	return newInst(ctx, InstData{op: OpNop})
}

// NewConst allocates a constant instruction.
func NewConst(ctx *Context, value int64) Inst {
	return newInst(ctx, InstData{op: OpConst, value: value})
}

// NewBinary allocates a two-operand instruction named by op ("add",
// "sub", "cmp", ...).
func NewBinary(ctx *Context, op string, lhs, rhs Inst) Inst {
	return newInst(ctx, InstData{op: OpBinary, binop: op, args: []Inst{lhs, rhs}})
}

// NewRet allocates a return instruction. A zero value handle means a
// void return.
func NewRet(ctx *Context, value Inst) Inst {
	data := InstData{op: OpRet}
	if value != (Inst{}) {
		data.args = []Inst{value}
	}
	return newInst(ctx, data)
}

// NewBr allocates an unconditional branch to target and registers the
// matching user record on target.
func NewBr(ctx *Context, target Block) (Inst, error) {
	i := newInst(ctx, InstData{op: OpBr})
	if err := i.addBlockOperand(ctx, target); err != nil {
		return Inst{}, err
	}
	return i, nil
}

// NewCondBr allocates a conditional branch on cond with block operand 0
// taken on true and block operand 1 on false, registering user records
// on both targets.
func NewCondBr(ctx *Context, cond Inst, then, els Block) (Inst, error) {
	i := newInst(ctx, InstData{op: OpCondBr, args: []Inst{cond}})
	if err := i.addBlockOperand(ctx, then); err != nil {
		return Inst{}, err
	}
	if err := i.addBlockOperand(ctx, els); err != nil {
		return Inst{}, err
	}
	return i, nil
}

func (i Inst) data(ctx *Context) (*InstData, error) {
	d, ok := ctx.insts.Get(i.ref)
	if !ok {
		return nil, fmt.Errorf("%w: inst %s", ErrInvalidPointer, i.Name())
	}
	return d, nil
}

// Valid reports whether i still resolves to a live instruction.
func (i Inst) Valid(ctx *Context) bool { return ctx.insts.Valid(i.ref) }

// Name returns a debug label derived from the arena slot index. It is
// not stable across edits that reuse slots; diagnostics only.
func (i Inst) Name() string { return fmt.Sprintf("%%%d", i.ref.Index()) }

// Op returns the opcode.
func (i Inst) Op(ctx *Context) (Opcode, error) {
	d, err := i.data(ctx)
	if err != nil {
		return OpNop, err
	}
	return d.op, nil
}

// Parent returns the block currently holding i, or the zero handle.
func (i Inst) Parent(ctx *Context) (Block, error) { return i.holder(ctx) }

// Next returns the next instruction in i's block, or the zero handle.
func (i Inst) Next(ctx *Context) (Inst, error) { return i.next(ctx) }

// Prev returns the previous instruction in i's block, or the zero handle.
func (i Inst) Prev(ctx *Context) (Inst, error) { return i.prev(ctx) }

func (i Inst) addBlockOperand(ctx *Context, b Block) error {
	d, err := i.data(ctx)
	if err != nil {
		return err
	}
	idx := len(d.blocks)
	d.blocks = append(d.blocks, b)
	return b.insertUser(ctx, User{inst: i, index: idx})
}

// NumSuccessors returns the number of block operands.
func (i Inst) NumSuccessors(ctx *Context) (int, error) {
	d, err := i.data(ctx)
	if err != nil {
		return 0, err
	}
	return len(d.blocks), nil
}

// Successor returns block operand idx: the br target for idx 0, or the
// condbr true/false arm for idx 0/1.
func (i Inst) Successor(ctx *Context, idx int) (Block, error) {
	d, err := i.data(ctx)
	if err != nil {
		return Block{}, err
	}
	if idx < 0 || idx >= len(d.blocks) {
		return Block{}, fmt.Errorf("%w: successor %d of %s", ErrBadOperand, idx, i.Name())
	}
	return d.blocks[idx], nil
}

// ReplaceSuccessor retargets block operand idx to target, moving the
// user record from the old block to the new one.
func (i Inst) ReplaceSuccessor(ctx *Context, idx int, target Block) error {
	d, err := i.data(ctx)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(d.blocks) {
		return fmt.Errorf("%w: successor %d of %s", ErrBadOperand, idx, i.Name())
	}
	old := d.blocks[idx]
	if old == target {
		return nil
	}
	if err := old.removeUser(ctx, User{inst: i, index: idx}); err != nil {
		return err
	}
	d.blocks[idx] = target
	return target.insertUser(ctx, User{inst: i, index: idx})
}

// InsertAfter links other into i's block immediately after i.
func (i Inst) InsertAfter(ctx *Context, other Inst) error {
	return insertAfter[Inst, Block](ctx, i, other)
}

// InsertBefore links other into i's block immediately before i.
func (i Inst) InsertBefore(ctx *Context, other Inst) error {
	return insertBefore[Inst, Block](ctx, i, other)
}

// Unlink removes i from its block's list without deallocating it.
func (i Inst) Unlink(ctx *Context) error {
	return unlinkNode[Inst, Block](ctx, i)
}

// Dispose removes i's user registrations from its block operands and
// releases its slot. i must already be unlinked from any block.
func (i Inst) Dispose(ctx *Context) error {
	d, err := i.data(ctx)
	if err != nil {
		return err
	}
	if d.parent != (Block{}) || d.next != (Inst{}) || d.prev != (Inst{}) {
		return fmt.Errorf("%w: dispose of %s", ErrStillLinked, i.Name())
	}
	for idx, b := range d.blocks {
		if err := b.removeUser(ctx, User{inst: i, index: idx}); err != nil {
			return err
		}
	}
	ctx.insts.Dealloc(i.ref)
	return nil
}

// Render returns the one-line debug text of i.
func (i Inst) Render(ctx *Context) (string, error) {
	d, err := i.data(ctx)
	if err != nil {
		return "", err
	}
	switch d.op {
	case OpNop:
		return "nop", nil
	case OpConst:
		return fmt.Sprintf("%s = const %d", i.Name(), d.value), nil
	case OpBinary:
		names := make([]string, len(d.args))
		for k, a := range d.args {
			names[k] = a.Name()
		}
		return fmt.Sprintf("%s = %s %s", i.Name(), d.binop, strings.Join(names, ", ")), nil
	case OpRet:
		if len(d.args) == 0 {
			return "ret", nil
		}
		return fmt.Sprintf("ret %s", d.args[0].Name()), nil
	case OpBr:
		return fmt.Sprintf("br %s", d.blocks[0].Name()), nil
	case OpCondBr:
		return fmt.Sprintf("condbr %s, %s, %s", d.args[0].Name(), d.blocks[0].Name(), d.blocks[1].Name()), nil
	default:
		return d.op.String(), nil
	}
}

// list node role: instructions are held by blocks.

func (i Inst) next(ctx *Context) (Inst, error) {
	d, err := i.data(ctx)
	if err != nil {
		return Inst{}, err
	}
	return d.next, nil
}

func (i Inst) prev(ctx *Context) (Inst, error) {
	d, err := i.data(ctx)
	if err != nil {
		return Inst{}, err
	}
	return d.prev, nil
}

func (i Inst) setNext(ctx *Context, next Inst) error {
	d, err := i.data(ctx)
	if err != nil {
		return err
	}
	d.next = next
	return nil
}

func (i Inst) setPrev(ctx *Context, prev Inst) error {
	d, err := i.data(ctx)
	if err != nil {
		return err
	}
	d.prev = prev
	return nil
}

func (i Inst) holder(ctx *Context) (Block, error) {
	d, err := i.data(ctx)
	if err != nil {
		return Block{}, err
	}
	return d.parent, nil
}

func (i Inst) setHolder(ctx *Context, b Block) error {
	d, err := i.data(ctx)
	if err != nil {
		return err
	}
	d.parent = b
	return nil
}
