package ir

import "iter"

// The intrusive list contract. It is implemented twice with no
// duplicated logic: instructions are nodes held by blocks, and blocks
// are nodes held by functions. The zero handle plays the role of the
// missing link at either end.

// listNode is the node role: next/prev links to siblings of the same
// kind plus a back-reference to the container currently holding it.
type listNode[S comparable, C comparable] interface {
	comparable
	next(ctx *Context) (S, error)
	prev(ctx *Context) (S, error)
	setNext(ctx *Context, next S) error
	setPrev(ctx *Context, prev S) error
	holder(ctx *Context) (C, error)
	setHolder(ctx *Context, c C) error
}

// listContainer is the container role: head/tail bounds for one element
// kind.
type listContainer[S comparable] interface {
	comparable
	head(ctx *Context) (S, error)
	tail(ctx *Context) (S, error)
	setHead(ctx *Context, s S) error
	setTail(ctx *Context, s S) error
}

// insertAfter links node into at's list immediately after at. node must
// be unattached.
func insertAfter[S listNode[S, C], C listContainer[S]](ctx *Context, at, node S) error {
	var none S
	if at == none || node == none {
		return ErrInvalidPointer
	}
	if err := requireUnattached[S, C](ctx, node); err != nil {
		return err
	}
	cont, err := at.holder(ctx)
	if err != nil {
		return err
	}
	next, err := at.next(ctx)
	if err != nil {
		return err
	}
	if err := node.setPrev(ctx, at); err != nil {
		return err
	}
	if err := node.setNext(ctx, next); err != nil {
		return err
	}
	if err := at.setNext(ctx, node); err != nil {
		return err
	}
	if next != none {
		if err := next.setPrev(ctx, node); err != nil {
			return err
		}
	}
	if err := node.setHolder(ctx, cont); err != nil {
		return err
	}
	var noneC C
	if cont != noneC {
		tail, err := cont.tail(ctx)
		if err != nil {
			return err
		}
		if tail == at {
			return cont.setTail(ctx, node)
		}
	}
	return nil
}

// insertBefore links node into at's list immediately before at. node
// must be unattached.
func insertBefore[S listNode[S, C], C listContainer[S]](ctx *Context, at, node S) error {
	var none S
	if at == none || node == none {
		return ErrInvalidPointer
	}
	if err := requireUnattached[S, C](ctx, node); err != nil {
		return err
	}
	cont, err := at.holder(ctx)
	if err != nil {
		return err
	}
	prev, err := at.prev(ctx)
	if err != nil {
		return err
	}
	if err := node.setNext(ctx, at); err != nil {
		return err
	}
	if err := node.setPrev(ctx, prev); err != nil {
		return err
	}
	if err := at.setPrev(ctx, node); err != nil {
		return err
	}
	if prev != none {
		if err := prev.setNext(ctx, node); err != nil {
			return err
		}
	}
	if err := node.setHolder(ctx, cont); err != nil {
		return err
	}
	var noneC C
	if cont != noneC {
		head, err := cont.head(ctx)
		if err != nil {
			return err
		}
		if head == at {
			return cont.setHead(ctx, node)
		}
	}
	return nil
}

// appendNode links node at the end of cont's list. node must be
// unattached.
func appendNode[S listNode[S, C], C listContainer[S]](ctx *Context, cont C, node S) error {
	var none S
	if node == none {
		return ErrInvalidPointer
	}
	tail, err := cont.tail(ctx)
	if err != nil {
		return err
	}
	if tail == none {
		if err := requireUnattached[S, C](ctx, node); err != nil {
			return err
		}
		if err := cont.setHead(ctx, node); err != nil {
			return err
		}
		if err := cont.setTail(ctx, node); err != nil {
			return err
		}
		return node.setHolder(ctx, cont)
	}
	return insertAfter[S, C](ctx, tail, node)
}

// prependNode links node at the front of cont's list. node must be
// unattached.
func prependNode[S listNode[S, C], C listContainer[S]](ctx *Context, cont C, node S) error {
	var none S
	if node == none {
		return ErrInvalidPointer
	}
	head, err := cont.head(ctx)
	if err != nil {
		return err
	}
	if head == none {
		return appendNode[S, C](ctx, cont, node)
	}
	return insertBefore[S, C](ctx, head, node)
}

// unlinkNode removes node from whatever list it is in, fixing the
// container's head/tail when node is an endpoint and clearing node's
// own links. Unlinking an unattached node is a no-op.
func unlinkNode[S listNode[S, C], C listContainer[S]](ctx *Context, node S) error {
	var none S
	if node == none {
		return ErrInvalidPointer
	}
	prev, err := node.prev(ctx)
	if err != nil {
		return err
	}
	next, err := node.next(ctx)
	if err != nil {
		return err
	}
	cont, err := node.holder(ctx)
	if err != nil {
		return err
	}
	var noneC C
	if cont != noneC {
		head, err := cont.head(ctx)
		if err != nil {
			return err
		}
		if head == node {
			if err := cont.setHead(ctx, next); err != nil {
				return err
			}
		}
		tail, err := cont.tail(ctx)
		if err != nil {
			return err
		}
		if tail == node {
			if err := cont.setTail(ctx, prev); err != nil {
				return err
			}
		}
	}
	if prev != none {
		if err := prev.setNext(ctx, next); err != nil {
			return err
		}
	}
	if next != none {
		if err := next.setPrev(ctx, prev); err != nil {
			return err
		}
	}
	if err := node.setNext(ctx, none); err != nil {
		return err
	}
	if err := node.setPrev(ctx, none); err != nil {
		return err
	}
	return node.setHolder(ctx, noneC)
}

func requireUnattached[S listNode[S, C], C listContainer[S]](ctx *Context, node S) error {
	cont, err := node.holder(ctx)
	if err != nil {
		return err
	}
	var noneC C
	if cont != noneC {
		return ErrStillLinked
	}
	return nil
}

// nodesForward yields cont's nodes head to tail. The successor is read
// before each yield, so the loop body may unlink or even deallocate the
// node it is visiting.
func nodesForward[S listNode[S, C], C listContainer[S]](ctx *Context, cont C) iter.Seq[S] {
	return func(yield func(S) bool) {
		var none S
		cur, err := cont.head(ctx)
		if err != nil {
			return
		}
		for cur != none {
			next, err := cur.next(ctx)
			if err != nil {
				next = none
			}
			if !yield(cur) {
				return
			}
			cur = next
		}
	}
}

// nodesBackward yields cont's nodes tail to head, with the same
// unlink-safety as nodesForward.
func nodesBackward[S listNode[S, C], C listContainer[S]](ctx *Context, cont C) iter.Seq[S] {
	return func(yield func(S) bool) {
		var none S
		cur, err := cont.tail(ctx)
		if err != nil {
			return
		}
		for cur != none {
			prev, err := cur.prev(ctx)
			if err != nil {
				prev = none
			}
			if !yield(cur) {
				return
			}
			cur = prev
		}
	}
}
