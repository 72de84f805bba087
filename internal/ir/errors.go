package ir

import "errors"

// Failure conditions of the IR layer. These are compiler-internal:
// callers are other passes, never end users, and any occurrence means
// malformed IR was produced by a bug elsewhere in the pipeline.
var (
	// ErrInvalidPointer reports a dereference of an absent or
	// deallocated arena slot.
	ErrInvalidPointer = errors.New("ir: invalid pointer")

	// ErrNotABranch reports an edge operation whose terminator is
	// neither an unconditional nor a conditional branch.
	ErrNotABranch = errors.New("ir: instruction is not a branch")

	// ErrNotInBlock reports a structural operation on an instruction
	// that is not linked into the expected block.
	ErrNotInBlock = errors.New("ir: instruction not in block")

	// ErrNotAttached reports an operation that needs a containing
	// aggregate on an entity that has none.
	ErrNotAttached = errors.New("ir: entity not attached to a container")

	// ErrStillLinked reports an attachment of a node that is already
	// linked into a structural list, or a disposal of one that still is.
	ErrStillLinked = errors.New("ir: node still linked")

	// ErrStillReferenced reports an attempt to destroy an entity that
	// still has registered users elsewhere in the IR.
	ErrStillReferenced = errors.New("ir: entity still referenced")

	// ErrBadOperand reports an operand index out of range.
	ErrBadOperand = errors.New("ir: operand index out of range")
)
