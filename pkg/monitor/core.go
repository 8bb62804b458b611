// Package monitor is the leader-elected daemon that runs periodic health
// checks and reaps runs orphaned by dead agents.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"armada/pkg/coordination"
	"armada/pkg/execution"
	"armada/pkg/logger"
	"armada/pkg/logsink"
	"armada/pkg/metrics"
	"armada/pkg/storage"
)

const reconcileInterval = 30 * time.Second

// scheduledCheck pairs a check definition with its parsed cron schedule.
type scheduledCheck struct {
	def      CheckDef
	schedule cron.Schedule
	next     time.Time
}

type Core struct {
	checks      []*scheduledCheck
	runner      *execution.Runner
	runStore    storage.RunStore
	queue       storage.Queue
	coordinator coordination.Coordinator
	interval    time.Duration
}

func NewCore(checks []CheckDef, interval time.Duration, runner *execution.Runner, runStore storage.RunStore, queue storage.Queue, coord coordination.Coordinator) (*Core, error) {
	if interval == 0 {
		interval = 10 * time.Second
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	now := time.Now()

	scheduled := make([]*scheduledCheck, 0, len(checks))
	for _, def := range checks {
		sched, err := parser.Parse(def.Schedule)
		if err != nil {
			return nil, fmt.Errorf("check %q has invalid schedule %q: %w", def.Name, def.Schedule, err)
		}
		scheduled = append(scheduled, &scheduledCheck{
			def:      def,
			schedule: sched,
			next:     sched.Next(now),
		})
	}

	return &Core{
		checks:      scheduled,
		runner:      runner,
		runStore:    runStore,
		queue:       queue,
		coordinator: coord,
		interval:    interval,
	}, nil
}

// Run is the main monitor loop. Only the election leader runs checks and
// reconciliation; followers idle until they win a campaign. Blocks until
// ctx is cancelled.
func (c *Core) Run(ctx context.Context, election coordination.Election) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	reconcileTicker := time.NewTicker(reconcileInterval)
	defer reconcileTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("monitor shutting down")
			return
		case <-ticker.C:
			if _, err := election.Leader(ctx); err != nil {
				logger.Warn("failed to check leadership", zap.Error(err))
				continue
			}
			c.runDueChecks(ctx)
		case <-reconcileTicker.C:
			if _, err := election.Leader(ctx); err != nil {
				continue
			}
			if err := c.Reconcile(ctx); err != nil {
				logger.Error("reconcile failed", zap.Error(err))
			}
		}
	}
}

// runDueChecks executes every check whose schedule has come due.
func (c *Core) runDueChecks(ctx context.Context) {
	now := time.Now()
	for _, check := range c.checks {
		if check.next.After(now) {
			continue
		}
		check.next = check.schedule.Next(now)
		c.runCheck(ctx, check.def)
	}
}

// runCheck executes one health check command. Output lines are forwarded to
// the checked service's log stream under the monitoring component.
func (c *Core) runCheck(ctx context.Context, def CheckDef) {
	cfg := execution.RunConfig{
		Command:        def.Command,
		TimeoutSeconds: def.TimeoutSeconds,
	}
	if def.Service != "" {
		cfg.Log = &execution.LogOptions{
			ServiceName: def.Service,
			Component:   "monitoring",
			Level:       logsink.LevelDebug,
		}
	}

	result, err := c.runner.Run(ctx, cfg)
	if err != nil {
		logger.Error("check rejected", zap.String("check", def.Name), zap.Error(err))
		metrics.ChecksTotal.WithLabelValues(def.Name, "error").Inc()
		return
	}

	outcome := "ok"
	if result.ExitCode != 0 {
		outcome = "fail"
		logger.Warn("check failed",
			zap.String("check", def.Name),
			zap.Int("exit_code", result.ExitCode),
			zap.Bool("timed_out", result.TimedOut))
	}
	metrics.ChecksTotal.WithLabelValues(def.Name, outcome).Inc()
}

// Reconcile fails RUNNING runs whose agent has dropped out of the node
// registry.
func (c *Core) Reconcile(ctx context.Context) error {
	nodes, err := c.coordinator.GetActiveNodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active nodes: %w", err)
	}
	metrics.ActiveNodes.Set(float64(len(nodes)))

	if depth, err := c.queue.Len(ctx); err == nil {
		metrics.QueueDepth.Set(float64(depth))
	}

	// Zero live nodes means every RUNNING run is an orphan.
	count, err := c.runStore.MarkOrphansAsFailed(ctx, nodes)
	if err != nil {
		return fmt.Errorf("failed to reap orphans: %w", err)
	}

	if count > 0 {
		metrics.OrphansReaped.Add(float64(count))
		logger.Info("reaped orphaned runs", zap.Int64("count", count), zap.Int("active_nodes", len(nodes)))
	}
	return nil
}
