// Package shutdown runs cleanup hooks when the process is asked to stop.
//
// Hooks run in reverse order of registration under a shared deadline, so
// the HTTP server registered last stops accepting requests before the
// revocation store and the key it depends on are closed.
//
// Usage:
//
//	h := shutdown.NewHandler(15 * time.Second)
//	h.OnShutdown("revocation", store.Close)
//	err := h.Wait(ctx)
package shutdown
