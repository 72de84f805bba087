// Package ir implements the basic-block and control-flow-graph layer of
// the cinder intermediate representation.
//
// Every long-lived entity (function, block, instruction) lives in a
// generational arena owned by a Context and is addressed by a small
// copyable handle. Blocks form a doubly linked list inside a function,
// instructions form a doubly linked list inside a block, and control
// flow is recorded as an explicit set of (target, terminator, arm)
// edges on each block, kept consistent with def-use bookkeeping on the
// referenced blocks.
package ir

// Context owns the arenas backing one unit of IR. Every structural
// operation threads it explicitly. A Context must be mutated by one
// goroutine at a time; independent compilation units get independent
// Contexts rather than sharing one.
type Context struct {
	funcs  *Arena[FuncData]
	blocks *Arena[BlockData]
	insts  *Arena[InstData]
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{
		funcs:  NewArena[FuncData](4),
		blocks: NewArena[BlockData](32),
		insts:  NewArena[InstData](256),
	}
}

// LiveBlocks returns the number of live block slots.
func (c *Context) LiveBlocks() int { return c.blocks.Len() }

// LiveInsts returns the number of live instruction slots.
func (c *Context) LiveInsts() int { return c.insts.Len() }
