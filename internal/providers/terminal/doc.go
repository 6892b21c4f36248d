// Package terminal manages interactive PTY sessions.
//
// A Manager is the registry of live sessions keyed by caller-chosen ids. Each
// session owns one child process attached to one pseudo-terminal and two
// goroutines:
//   - the relay reads output in chunks and emits pty-output-<id> events
//   - the exit watcher reaps the child and evicts the session
//
// The registry lock guards the map only. Write, resize and close look the
// session up under the lock and do their I/O after releasing it; the writer
// and master handles carry their own locks.
//
// Close is strict: a second close of the same id reports not found. Closing
// sets the shutdown flag and hangs up the terminal; it does not wait for the
// relay, which observes the flag or the closed descriptor and exits.
//
// Tools:
//   - terminal.create_session, terminal.write, terminal.resize, terminal.close
//   - terminal.list_sessions, terminal.get_session
//
// Example Usage:
//
//	mgr := terminal.NewManager(terminal.DefaultOptions(), hub, metrics, logger)
//	info, err := mgr.Create(ctx, terminal.CreateOptions{ID: "t1", WorkingDir: home})
//	err = mgr.Write("t1", []byte("ls\n"))
//	err = mgr.Close("t1")
package terminal
