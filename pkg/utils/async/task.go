package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sw360ctl/pkg/utils/logging"
)

// Go runs fn in a new goroutine. The context given to fn keeps the logger of
// ctx but not its cancellation. A panic in fn is recovered, logged with its
// stack and reported as an error. The returned channel receives the result of
// fn once and is then closed.
func Go(ctx context.Context, name string, fn func(ctx context.Context) error) <-chan error {
	newCtx := logging.With(context.Background(), logging.From(ctx))
	result := make(chan error, 1)

	go func() {
		defer close(result)
		defer func() {
			if r := recover(); r != nil {
				logging.From(newCtx).Error("panic in async task",
					"task", name,
					"recover", r,
					"stack", string(debug.Stack()))
				result <- goerr.New("panic in async task", goerr.V("task", name), goerr.V("recover", r))
			}
		}()

		err := fn(newCtx)
		if err != nil {
			logging.From(newCtx).Error("error in async task", "task", name, "error", err)
		}
		result <- err
	}()

	return result
}
