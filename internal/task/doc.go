// Package task manages job queuing, processing, and lifecycle. It holds the
// in-memory task record store, the bounded FIFO of pending work, and the
// single-worker runner that executes submitted jobs strictly one at a time
// so they never contend for the inference backends.
package task
