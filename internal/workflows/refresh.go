package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// RefreshScheduleID identifies the schedule that starts RefreshSnapshotsWorkflow.
const RefreshScheduleID = "geomatch-snapshot-refresh"

// RefreshInput is the input for the refresh workflow. An empty Kinds refreshes every kind.
type RefreshInput struct {
	Kinds []domain.Kind
}

// RefreshResult reports the candidate count per refreshed kind and the kinds that failed.
type RefreshResult struct {
	Candidates map[domain.Kind]int
	Failed     []domain.Kind
}

// RefreshSnapshotsWorkflow rebuilds each kind's snapshot in turn. A kind that keeps
// failing after retries is recorded in the result; the workflow fails only when
// every kind failed.
func RefreshSnapshotsWorkflow(ctx workflow.Context, input RefreshInput) (RefreshResult, error) {
	logger := workflow.GetLogger(ctx)

	kinds := input.Kinds
	if len(kinds) == 0 {
		kinds = domain.Kinds
	}
	logger.Info("Starting snapshot refresh", "kinds", len(kinds))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	result := RefreshResult{Candidates: make(map[domain.Kind]int, len(kinds))}
	var lastErr error
	for _, kind := range kinds {
		var n int
		if err := workflow.ExecuteActivity(ctx, "RefreshSnapshot", kind).Get(ctx, &n); err != nil {
			logger.Warn("snapshot refresh failed", "kind", kind, "error", err)
			result.Failed = append(result.Failed, kind)
			lastErr = err
			continue
		}
		result.Candidates[kind] = n
	}

	if len(result.Failed) == len(kinds) {
		return result, fmt.Errorf("all snapshot refreshes failed: %w", lastErr)
	}

	logger.Info("Snapshot refresh complete", "refreshed", len(result.Candidates), "failed", len(result.Failed))
	return result, nil
}
