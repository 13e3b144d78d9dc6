// Package cleanup builds the post-task resource reclaim hook. The gateway
// fronts GPU-backed inference services, so after every task it can invoke a
// configured command (by default a torch cache flush) to release accelerator
// memory between jobs.
package cleanup

import (
	"context"
	"log/slog"
	"os/exec"
	"time"

	"github.com/synthworks/gengate/internal/task"
)

// CommandHook returns a hook that runs the given shell command after every
// task. The hook is strictly best effort: it bounds the command with the
// timeout, swallows failures, and only ever reports them at debug level.
// A host without the command installed loses nothing but the reclaim itself.
func CommandHook(command string, timeout time.Duration, logger *slog.Logger) task.CleanupFunc {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context) {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(runCtx, "sh", "-c", command)
		output, err := cmd.CombinedOutput()
		if err != nil {
			logger.Debug("cleanup command failed",
				"command", command,
				"error", err,
				"output", string(output))
			return
		}

		logger.Debug("cleanup command finished", "output", string(output))
	}
}

// Disabled returns a hook that does nothing, for deployments that turn the
// post-task reclaim off.
func Disabled() task.CleanupFunc {
	return func(context.Context) {}
}
