package main

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/geomatch/internal/bootstrap"
	"github.com/samirrijal/geomatch/internal/pkg/config"
	"github.com/samirrijal/geomatch/internal/pkg/logging"
	"github.com/samirrijal/geomatch/internal/workflows"
)

func main() {
	cfg, err := config.Load("geomatch-refresher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateMaps(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	svc, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("wire services: %v", err)
	}
	defer svc.Close()

	if svc.Cache == nil || cfg.Matching.SnapshotTTL <= 0 {
		slog.Warn("snapshot cache disabled, refreshes only publish events",
			"valkey", svc.Cache != nil, "snapshot_ttl", cfg.Matching.SnapshotTTL)
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	if err := ensureSchedule(ctx, c, cfg.Temporal); err != nil {
		log.Fatalf("schedule: %v", err)
	}

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.RefreshSnapshotsWorkflow)
	w.RegisterActivity(&workflows.RefreshActivities{Snapshots: svc.Candidates})

	slog.Info("refresher worker started",
		"task_queue", cfg.Temporal.TaskQueue,
		"interval", cfg.Temporal.RefreshIntervalDuration().String())
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// ensureSchedule creates the refresh schedule, or updates its interval if it already exists.
func ensureSchedule(ctx context.Context, c client.Client, tc config.TemporalConfig) error {
	spec := client.ScheduleSpec{
		Intervals: []client.ScheduleIntervalSpec{{Every: tc.RefreshIntervalDuration()}},
	}

	_, err := c.ScheduleClient().Create(ctx, client.ScheduleOptions{
		ID:   workflows.RefreshScheduleID,
		Spec: spec,
		Action: &client.ScheduleWorkflowAction{
			ID:        workflows.RefreshScheduleID + "-run",
			Workflow:  workflows.RefreshSnapshotsWorkflow,
			Args:      []interface{}{workflows.RefreshInput{}},
			TaskQueue: tc.TaskQueue,
		},
	})
	if err == nil {
		slog.Info("refresh schedule created", "id", workflows.RefreshScheduleID)
		return nil
	}
	if !errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
		return err
	}

	handle := c.ScheduleClient().GetHandle(ctx, workflows.RefreshScheduleID)
	return handle.Update(ctx, client.ScheduleUpdateOptions{
		DoUpdate: func(in client.ScheduleUpdateInput) (*client.ScheduleUpdate, error) {
			in.Description.Schedule.Spec = &spec
			return &client.ScheduleUpdate{Schedule: &in.Description.Schedule}, nil
		},
	})
}
