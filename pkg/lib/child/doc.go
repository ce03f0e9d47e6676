// Package child launches processes and owns them through a Child handle.
//
// Exactly one launch strategy is compiled per target: fork and exec on
// unix systems, CreateProcess on Windows. A launch either returns a Child
// for a running process or a *lib.LaunchError with no process left behind.
//
// A Child moves from Running to Exited (Wait observed the exit), Detached
// (Detach gave up ownership) or Terminated (Terminate sent a kill that still
// has to be reaped by Wait or Close). Close is the scope-exit release: a
// child that is still owned and running is killed and reaped. A Child that
// is dropped without Close gets the same treatment when it is garbage
// collected, but callers should not rely on that.
//
// A Child is not safe for concurrent use. Callers that wait in one goroutine
// and terminate from another must synchronize themselves.
package child
