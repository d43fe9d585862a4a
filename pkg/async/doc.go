// Package async provides small building blocks for asynchronous work:
// error-only futures and a runner for detached background tasks.
//
// # Futures
//
// Exec starts a function on its own goroutine and returns an ExecFuture
// that can be awaited, awaited with a timeout, or polled:
//
//	future := async.Exec(ctx, cfg, func(ctx context.Context, cfg Config) error {
//	    return warmCache(ctx, cfg)
//	})
//
//	if err := future.AwaitWithTimeout(5 * time.Second); errors.Is(err, async.ErrTimeout) {
//	    log.Println("cache warmup still running")
//	}
//
// ExecAll and ExecAny coordinate several futures: ExecAll waits for all
// of them and surfaces the first error, ExecAny returns as soon as one
// completes.
//
// # Runner
//
// Runner owns fire-and-forget work in a long-lived process. Go detaches a
// task from the submitting caller's cancellation while keeping the
// caller's context values, and Shutdown drains the runner:
//
//	runner := async.NewRunner(async.WithRunnerLogger(log))
//
//	err := runner.Go(ctx, func(ctx context.Context) error {
//	    return reindex(ctx)
//	})
//
//	// On process exit:
//	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	_ = runner.Shutdown(shutdownCtx)
//
// Task errors and panics are logged rather than returned; a detached
// task has no caller left to receive them.
//
// All types are safe for concurrent use.
package async
