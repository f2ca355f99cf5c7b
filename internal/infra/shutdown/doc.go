// Package shutdown coordinates ordered teardown of daemon components.
//
// The index daemon registers one hook per component as it starts (http
// endpoint, trace watcher, registry). On SIGINT or SIGTERM the hooks
// run in reverse registration order under a shared deadline, and every
// hook failure is collected into the error returned by Wait.
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown("daemon", server.Shutdown)
//	return h.Wait()
package shutdown
