package executor

import "context"

// Iterator is the pull-based runtime counterpart of a plan.Op: Open
// allocates per-execution state, Next yields one row at a time (ok=false
// signals end of stream, not an error), and Close releases resources
// regardless of whether the stream was drained. Cancellation is checked
// by the node scans (allNodesScan, labelScan) at each Next call and by
// Eval on each expression evaluation; the other iterators do not check
// ctx themselves and stop when one of those checks fails (grounded on the
// teacher's `select { case <-ctx.Done(): }` guard in
// query.*Query.Execute).
type Iterator interface {
	Open(ctx context.Context) error
	Next(ctx context.Context) (Row, bool, error)
	Close() error
}

func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
