// Package chainqueue implements a blocking FIFO queue that may be chained
// beneath a higher priority parent queue.
//
// A [Queue] resolves its next item by recursing through its parents first,
// taking from the highest ancestor that holds anything, before falling back to
// its own items. Items offered to a queue wake goroutines blocked on that queue
// and on every queue chained beneath it, since each descendant can consume
// them.
//
// Most methods operate on the queue's own items only. [Queue.Len] excludes the
// parents, whereas [Queue.TotalPending] includes them.
//
// Each queue accepts exactly one child. Chains are built top down: a parent is
// fixed when a queue is created and must already exist, so cycles cannot be
// formed.
package chainqueue
