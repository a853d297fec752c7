// Package async runs work on a goroutine and hands back a Future for the
// result.
//
//	future := async.Async(ctx, email, client.ResendCode)
//	// ...
//	msg, err := future.Await()
//
// AwaitWithTimeout returns ErrTimeout when the work is still running after the
// given duration; AwaitContext gives up when the caller's context is done.
// WaitAll collects results in argument order and WaitAny returns the first
// future to finish (ErrNoFutures for an empty call).
//
// Exec, ExecAll and ExecAny are the same helpers for work that only returns
// an error.
//
// A context that is already cancelled when Async is called completes the
// future with the context's error without running the function.
package async
