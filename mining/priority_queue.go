// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"container/heap"

	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/wire"
)

// txPrioItem is one candidate transaction on the priority queue: the
// transaction itself plus the bookkeeping the two orderings need and the
// set of still-unmined parent transactions blocking it from being minable
// yet.
type txPrioItem struct {
	tx         *wire.MsgTx
	fee        int64
	feePerKB   int64
	priority   float64
	dependsOn  map[chainhash.Hash]struct{}
}

// txPriorityQueueLessFunc compares two entries of the same queue and
// reports whether i should sort before j.
type txPriorityQueueLessFunc func(pq *txPriorityQueue, i, j *txPrioItem) bool

// txPriorityQueue is a container/heap.Interface priority queue over
// txPrioItem whose ordering is swappable at runtime via SetLessFunc,
// letting the template builder flip between priority-dominant and
// fee-dominant orderings mid-build without rebuilding the item slice from
// scratch — only re-heapifying it.
type txPriorityQueue struct {
	lessFunc txPriorityQueueLessFunc
	items    []*txPrioItem
}

func (pq *txPriorityQueue) Len() int { return len(pq.items) }

func (pq *txPriorityQueue) Less(i, j int) bool {
	return pq.lessFunc(pq, pq.items[i], pq.items[j])
}

func (pq *txPriorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *txPriorityQueue) Push(x interface{}) {
	pq.items = append(pq.items, x.(*txPrioItem))
}

func (pq *txPriorityQueue) Pop() interface{} {
	n := len(pq.items)
	item := pq.items[n-1]
	pq.items[n-1] = nil
	pq.items = pq.items[:n-1]
	return item
}

// SetLessFunc changes the queue's ordering and re-establishes the heap
// invariant under it, the mechanism NewBlockTemplate uses to switch from
// priority-dominant to fee-dominant ordering once accumulated block size
// crosses the priority-size threshold.
func (pq *txPriorityQueue) SetLessFunc(lessFunc txPriorityQueueLessFunc) {
	pq.lessFunc = lessFunc
	heap.Init(pq)
}

// txPQByPriority orders by priority first, breaking ties by fee rate —
// used while the block is still within its reserved high-priority region.
func txPQByPriority(pq *txPriorityQueue, i, j *txPrioItem) bool {
	if i.priority == j.priority {
		return i.feePerKB > j.feePerKB
	}
	return i.priority > j.priority
}

// txPQByFee orders by fee rate first, breaking ties by priority — used
// once the block has moved past its reserved high-priority region.
func txPQByFee(pq *txPriorityQueue, i, j *txPrioItem) bool {
	if i.feePerKB == j.feePerKB {
		return i.priority > j.priority
	}
	return i.feePerKB > j.feePerKB
}

// newTxPriorityQueue allocates a queue pre-sized for the expected candidate
// count, ordered by priority initially — NewBlockTemplate switches it to
// fee order before the first pop when BlockPrioritySize is zero.
func newTxPriorityQueue(capacity int) *txPriorityQueue {
	pq := &txPriorityQueue{
		items: make([]*txPrioItem, 0, capacity),
	}
	pq.SetLessFunc(txPQByPriority)
	return pq
}

// orphan is one mempool transaction not yet pushed onto the priority queue
// because it still depends on an unmined parent also present in the pool —
// the source's COrphan.
type orphan struct {
	item      *txPrioItem
	dependsOn map[chainhash.Hash]struct{}
}

// dependers tracks, for every unmined parent hash, which orphans are
// waiting on it — the source's mapDependers. When a parent is mined, the
// builder looks up its dependers, decrements each one's remaining
// dependency count, and pushes any that reach zero onto the live queue.
type dependers struct {
	byParent map[chainhash.Hash][]*orphan
}

func newDependers() *dependers {
	return &dependers{byParent: make(map[chainhash.Hash][]*orphan)}
}

// add records that o depends on parent's confirmation.
func (d *dependers) add(parent chainhash.Hash, o *orphan) {
	d.byParent[parent] = append(d.byParent[parent], o)
}

// resolve returns every orphan waiting on parent and removes the entry —
// called once after each transaction is appended to the block, mirroring
// the source's walk over mapDependers[hash] right after pushing a
// transaction.
func (d *dependers) resolve(parent chainhash.Hash) []*orphan {
	waiting := d.byParent[parent]
	delete(d.byParent, parent)
	return waiting
}
