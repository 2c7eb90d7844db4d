// Package async runs work on background goroutines and lets the caller
// collect the result later, or not at all.
//
// Go starts a function and returns a *Future. A Group tracks every task
// started through it so shutdown can wait for in-flight work:
//
//	var bg async.Group
//	f := async.Go(&bg, context.WithoutCancel(r.Context()), params, orchestrator.Send)
//	// respond to the client immediately
//	...
//	_ = bg.Wait(shutdownCtx)
//
// If the context is already cancelled when the goroutine starts, the function
// is not called and the Future completes with the context error.
package async
