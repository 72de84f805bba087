package ir

// User names one operand slot of one referencing instruction. Two
// distinct operands of the same instruction referencing the same entity
// are two distinct users.
type User struct {
	inst  Inst
	index int
}

// Inst returns the referencing instruction.
func (u User) Inst() Inst { return u.inst }

// Index returns the operand slot within the referencing instruction.
func (u User) Index() int { return u.index }

// usable is the def-use role: an entity that keeps an exact record of
// the operand slots currently referencing it. Whoever creates a
// reference registers the matching user; whoever replaces or deletes
// the reference removes it.
type usable interface {
	insertUser(ctx *Context, u User) error
	removeUser(ctx *Context, u User) error
}
