package core

import "context"

// InputAdapter loads one input for pipeline processing.
type InputAdapter[In any] interface {
	Load(ctx context.Context) (In, error)
}

// OutputAdapter persists the output produced by pipeline processing.
type OutputAdapter[Out any] interface {
	Store(ctx context.Context, out Out) error
}

// LoadFunc adapts a function to the InputAdapter interface.
type LoadFunc[In any] func(ctx context.Context) (In, error)

func (f LoadFunc[In]) Load(ctx context.Context) (In, error) {
	return f(ctx)
}
