package tasks

import (
	"context"
	"fmt"
)

// newMemoryPruneTask creates the scheduled task that deletes conversation
// turns older than the AI history window. Stale turns never reach the
// model anyway, so keeping them only grows the database.
func newMemoryPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "memory_prune")

	return func(ctx context.Context) error {
		pruned, err := deps.Store.PruneMemory(ctx, deps.Config.AI.HistoryWindow)
		if err != nil {
			log.ErrorContext(ctx, "Memory prune task failed", "error", err)
			return fmt.Errorf("memory prune failed: %w", err)
		}

		log.InfoContext(ctx, "Memory prune task completed", "pruned", pruned)
		return nil
	}
}
