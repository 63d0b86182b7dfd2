// Package tieredpool implements a worker pool with strict priority tiers.
//
// A [Dispatcher] owns three tiers, High, Medium and Low, each with its own
// queue and its own group of workers. The queues are chained with
// [chainqueue], so whenever the High tier has pending tasks they are started
// before anything on Medium, and Medium before Low, even by the workers of the
// lower tiers. Workers for every tier are started up front, so the first task
// on any tier is picked up without delay.
//
// There is no fairness between tiers. Lower tiers may starve for as long as
// higher tiers keep receiving work; that is the point.
//
// [chainqueue]: https://pkg.go.dev/github.com/tomasbasham/tieredpool/chainqueue
package tieredpool
