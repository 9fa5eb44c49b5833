// Package async provides the small concurrency primitives a session is
// built from.
//
//   - Future: a write-once register. One writer, any number of readers
//     blocking until the value exists.
//   - CallTable: sequence id to Future, for correlating calls with replies.
//   - Queue: an unbounded FIFO whose Dequeue blocks until an item arrives
//     or the context is done.
//
// All types are safe for concurrent use and their zero values are not
// usable; construct them with the New functions.
package async
