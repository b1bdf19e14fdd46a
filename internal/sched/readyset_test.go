package sched

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eachReadySet runs the same subtest against both implementations; the tree
// must honor the exact contract of the list.
func eachReadySet(t *testing.T, fn func(t *testing.T, reg *Registry, rs readySet)) {
	t.Run("list", func(t *testing.T) {
		reg := NewRegistry(128)
		fn(t, reg, newOrderedList(reg))
	})
	t.Run("tree", func(t *testing.T) {
		reg := NewRegistry(128)
		fn(t, reg, newTreeSet())
	})
}

func mustRecord(t *testing.T, reg *Registry, id TaskID, vruntime float64) *TaskRecord {
	t.Helper()
	rec, err := reg.Lookup(id)
	require.NoError(t, err)
	rec.vruntime = vruntime
	return rec
}

func TestReadySetTieBrokenByInsertionOrder(t *testing.T) {
	eachReadySet(t, func(t *testing.T, reg *Registry, rs readySet) {
		a := mustRecord(t, reg, 0, 5)
		b := mustRecord(t, reg, 1, 2)
		c := mustRecord(t, reg, 2, 5)

		require.NoError(t, rs.Insert(a))
		require.NoError(t, rs.Insert(b))
		require.NoError(t, rs.Insert(c))

		var order []TaskID
		for {
			rec, ok := rs.PopFront()
			if !ok {
				break
			}
			order = append(order, rec.ID())
		}
		assert.Equal(t, []TaskID{1, 0, 2}, order)
	})
}

func TestReadySetPopsAscending(t *testing.T) {
	eachReadySet(t, func(t *testing.T, reg *Registry, rs readySet) {
		rng := rand.New(rand.NewSource(1))
		for id := TaskID(0); id < 100; id++ {
			require.NoError(t, rs.Insert(mustRecord(t, reg, id, rng.Float64()*1000)))
		}
		assert.Equal(t, 100, rs.Len())

		prev := -1.0
		for {
			rec, ok := rs.PopFront()
			if !ok {
				break
			}
			assert.GreaterOrEqual(t, rec.Vruntime(), prev)
			prev = rec.Vruntime()
		}
		assert.Equal(t, 0, rs.Len())
	})
}

func TestReadySetEmptyPop(t *testing.T) {
	eachReadySet(t, func(t *testing.T, reg *Registry, rs readySet) {
		rec, ok := rs.PopFront()
		assert.False(t, ok)
		assert.Nil(t, rec)
	})
}

func TestReadySetDoubleInsertRejected(t *testing.T) {
	eachReadySet(t, func(t *testing.T, reg *Registry, rs readySet) {
		rec := mustRecord(t, reg, 0, 1)
		require.NoError(t, rs.Insert(rec))
		assert.ErrorIs(t, rs.Insert(rec), ErrAlreadyQueued)
		assert.Equal(t, 1, rs.Len())
	})
}

func TestReadySetReinsertAfterPop(t *testing.T) {
	eachReadySet(t, func(t *testing.T, reg *Registry, rs readySet) {
		rec := mustRecord(t, reg, 0, 1)
		require.NoError(t, rs.Insert(rec))

		popped, ok := rs.PopFront()
		require.True(t, ok)
		require.Same(t, rec, popped)

		rec.vruntime = 9
		require.NoError(t, rs.Insert(rec))
		assert.Equal(t, 1, rs.Len())
	})
}

// Both implementations must agree on pop order for the same insert
// sequence, ties included.
func TestReadySetListTreeParity(t *testing.T) {
	regList := NewRegistry(128)
	regTree := NewRegistry(128)
	list := newOrderedList(regList)
	tree := newTreeSet()

	rng := rand.New(rand.NewSource(7))
	for id := TaskID(0); id < 64; id++ {
		// Coarse values on purpose, to generate plenty of ties.
		v := float64(rng.Intn(8))
		require.NoError(t, list.Insert(mustRecord(t, regList, id, v)))
		require.NoError(t, tree.Insert(mustRecord(t, regTree, id, v)))
	}

	for {
		lr, lok := list.PopFront()
		tr, tok := tree.PopFront()
		require.Equal(t, lok, tok)
		if !lok {
			break
		}
		assert.Equal(t, lr.ID(), tr.ID())
	}
}
