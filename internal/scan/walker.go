package scan

import (
	"context"
	"fmt"
)

// Walker lists the history of a ref.
type Walker struct {
	oracle Oracle
}

// NewWalker returns a Walker backed by o.
func NewWalker(o Oracle) *Walker {
	return &Walker{oracle: o}
}

// History checks ref out detached and returns every commit reachable from
// it, oldest first. It leaves the working tree at ref.
func (w *Walker) History(ctx context.Context, ref string) ([]string, error) {
	if err := w.oracle.Checkout(ctx, ref); err != nil {
		return nil, fmt.Errorf("checking out %s: %w", ref, err)
	}
	commits, err := w.oracle.LogFullHistory(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("listing history of %s: %w", ref, err)
	}
	return commits, nil
}
