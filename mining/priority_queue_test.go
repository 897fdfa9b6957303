// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTxPriorityQueueOrdersByPriorityThenFee(t *testing.T) {
	pq := newTxPriorityQueue(3)
	heap.Push(pq, &txPrioItem{priority: 1, feePerKB: 100})
	heap.Push(pq, &txPrioItem{priority: 3, feePerKB: 10})
	heap.Push(pq, &txPrioItem{priority: 3, feePerKB: 50})

	first := heap.Pop(pq).(*txPrioItem)
	require.Equal(t, 3.0, first.priority)
	require.Equal(t, int64(50), first.feePerKB)

	second := heap.Pop(pq).(*txPrioItem)
	require.Equal(t, 3.0, second.priority)
	require.Equal(t, int64(10), second.feePerKB)

	third := heap.Pop(pq).(*txPrioItem)
	require.Equal(t, 1.0, third.priority)
}

func TestTxPriorityQueueSwitchesToFeeOrdering(t *testing.T) {
	pq := newTxPriorityQueue(2)
	heap.Push(pq, &txPrioItem{priority: 10, feePerKB: 1})
	heap.Push(pq, &txPrioItem{priority: 1, feePerKB: 100})

	pq.SetLessFunc(txPQByFee)

	top := heap.Pop(pq).(*txPrioItem)
	require.Equal(t, int64(100), top.feePerKB)
}

func TestDependersResolveClearsEntry(t *testing.T) {
	d := newDependers()
	var parent, other [32]byte
	parent[0] = 1
	other[0] = 2

	waiter := &orphan{item: &txPrioItem{}}
	d.add(parent, waiter)

	require.Len(t, d.resolve(parent), 1)
	require.Empty(t, d.resolve(parent))
	require.Empty(t, d.resolve(other))
}
