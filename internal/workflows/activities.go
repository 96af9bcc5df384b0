package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// SnapshotRefresher rebuilds the cached candidate snapshot of a kind.
// usecases.CandidateService satisfies it.
type SnapshotRefresher interface {
	Refresh(ctx context.Context, kind domain.Kind) (int, error)
}

// RefreshActivities holds the activity implementations for the refresh workflow.
type RefreshActivities struct {
	Snapshots SnapshotRefresher
}

// RefreshSnapshot re-fetches one kind from the candidate source and returns
// the number of candidates stored.
func (a *RefreshActivities) RefreshSnapshot(ctx context.Context, kind domain.Kind) (int, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return 0, err
	}

	n, err := a.Snapshots.Refresh(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("refresh %s snapshot: %w", kind, err)
	}

	activity.GetLogger(ctx).Info("snapshot refreshed", "kind", kind, "candidates", n)
	return n, nil
}
