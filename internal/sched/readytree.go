package sched

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// treeSet is a red-black tree readySet, an asymptotically better drop-in
// for the ordered list when the runnable backlog grows: O(log n) insert
// against the list's O(n). Selected with `ready_set: tree`. It trades away
// the list's no-allocation property, the tree allocates a node per insert.
type treeSet struct {
	rbt *redblacktree.Tree
	seq uint64
}

// treeKey orders members by vruntime, then by insertion sequence so that
// ties keep arrival order, matching the list implementation.
type treeKey struct {
	vruntime float64
	seq      uint64
}

func treeCmp(a, b any) int {
	ka, kb := a.(treeKey), b.(treeKey)
	switch {
	case ka.vruntime < kb.vruntime:
		return -1
	case ka.vruntime > kb.vruntime:
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}

func newTreeSet() *treeSet {
	return &treeSet{rbt: redblacktree.NewWith(treeCmp)}
}

func (s *treeSet) Len() int { return s.rbt.Size() }

func (s *treeSet) Insert(t *TaskRecord) error {
	if t.queued {
		return ErrAlreadyQueued
	}
	s.rbt.Put(treeKey{vruntime: t.vruntime, seq: s.seq}, t)
	s.seq++
	t.queued = true
	return nil
}

func (s *treeSet) PopFront() (*TaskRecord, bool) {
	node := s.rbt.Left()
	if node == nil {
		return nil, false
	}
	t := node.Value.(*TaskRecord)
	s.rbt.Remove(node.Key)
	t.queued = false
	return t, true
}
