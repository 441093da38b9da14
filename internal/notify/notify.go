package notify

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// DispatchError is a delivery failure of one notifier.
type DispatchError struct {
	Notifier string
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Notifier, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Multi sends to every notifier and returns all failures combined.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		if sendErr := n.Send(ctx, title, text); sendErr != nil {
			err = multierr.Append(err, &DispatchError{Notifier: nameOf(n), Err: sendErr})
		}
	}
	return err
}

func (m Multi) Name() string { return "multi" }

func nameOf(n Notifier) string {
	if named, ok := n.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", n)
}
