/*
Package resilience provides a circuit breaker for external commands.

The git runner wraps every invocation in a Breaker. Only infrastructure
faults (git missing, timeouts) count; a git command that runs and exits
non-zero is a normal result. After Threshold consecutive faults the breaker
opens and calls fail immediately with ErrOpen until Cooldown passes, when a
single trial request is let through.

# Usage

	breaker := resilience.New("git", resilience.Settings{
		Threshold: 3,
		Cooldown:  30 * time.Second,
		IsFault:   func(err error) bool { return err != nil && !isExitError(err) },
	})

	err := breaker.Do(func() error {
		return cmd.Run()
	})
*/
package resilience
