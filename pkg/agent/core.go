// Package agent is the node daemon that pulls queued runs, executes them
// with bounded time, and reports results back to storage.
package agent

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	config "armada/configs"
	"armada/pkg/coordination"
	"armada/pkg/execution"
	"armada/pkg/logger"
	"armada/pkg/metrics"
	"armada/pkg/models"
	"armada/pkg/storage"
)

const (
	consumerGroup     = "armada-agents"
	heartbeatInterval = 5 * time.Second
	heartbeatTTL      = 10 // seconds; double the interval for a safe margin
)

type Agent struct {
	ID       string
	Hostname string

	// Resources
	TotalCPU int
	TotalMem uint64 // In MB

	coordinator coordination.Coordinator
	queue       storage.Queue
	runStore    storage.RunStore
	outputs     storage.OutputStore
	runner      *execution.Runner
}

func NewAgent(cfg *config.Config, coord coordination.Coordinator, queue storage.Queue, runStore storage.RunStore, outputs storage.OutputStore, runner *execution.Runner) *Agent {
	hostname, _ := os.Hostname()
	id := fmt.Sprintf("%s-%s", hostname, uuid.New().String()[:8])

	return &Agent{
		ID:          id,
		Hostname:    hostname,
		TotalCPU:    runtime.NumCPU(),
		TotalMem:    detectTotalMemory(),
		coordinator: coord,
		queue:       queue,
		runStore:    runStore,
		outputs:     outputs,
		runner:      runner,
	}
}

func detectTotalMemory() uint64 {
	v, err := mem.VirtualMemory()
	if err != nil {
		logger.Warn("failed to detect memory, defaulting to 1GB", zap.Error(err))
		return 1024
	}
	// Return in MB
	return v.Total / 1024 / 1024
}

// Start begins the agent's heartbeat and work loops. Blocks until ctx is
// cancelled.
func (a *Agent) Start(ctx context.Context) {
	logger.Info("agent starting",
		zap.String("agent_id", a.ID),
		zap.Int("cpus", a.TotalCPU),
		zap.Uint64("mem_mb", a.TotalMem))

	if err := a.queue.EnsureGroup(ctx, consumerGroup); err != nil {
		logger.Warn("failed to ensure consumer group", zap.Error(err))
	}

	go a.heartbeatLoop(ctx)

	// Worker pool semaphore, one slot per CPU.
	sem := make(chan struct{}, a.TotalCPU)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			sem <- struct{}{}
			go func() {
				defer func() { <-sem }()
				a.consumeOne(ctx)
			}()
		}
	}
}

func (a *Agent) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.sendHeartbeat(ctx); err != nil {
				logger.Warn("heartbeat failed", zap.String("agent_id", a.ID), zap.Error(err))
			}
		}
	}
}

// sendHeartbeat refreshes this node's registration lease. A node that
// misses two beats falls out of the active set.
func (a *Agent) sendHeartbeat(ctx context.Context) error {
	if err := a.coordinator.RegisterNode(ctx, a.ID, heartbeatTTL); err != nil {
		return fmt.Errorf("failed to register node: %w", err)
	}
	metrics.HeartbeatsSent.Inc()
	return nil
}

func (a *Agent) consumeOne(ctx context.Context) {
	// Pop blocks up to its own read timeout; nil run means the queue was
	// empty, in which case back off briefly so a full semaphore doesn't spin.
	msgID, run, err := a.queue.Pop(ctx, consumerGroup, a.ID)
	if err != nil {
		logger.Error("failed to pop run", zap.Error(err))
		time.Sleep(1 * time.Second)
		return
	}
	if run == nil {
		time.Sleep(1 * time.Second)
		return
	}

	metrics.AgentRunsRunning.Inc()
	defer metrics.AgentRunsRunning.Dec()

	logger.Info("run received",
		zap.String("run_id", run.ID.String()),
		zap.String("run_service", run.Service),
		zap.String("command", run.Command))

	if err := a.runStore.UpdateRunState(ctx, run.ID, a.ID, time.Now()); err != nil {
		logger.Warn("failed to mark run as running", zap.String("run_id", run.ID.String()), zap.Error(err))
	}

	start := time.Now()
	result, err := a.runner.Run(ctx, runConfigFor(run))
	duration := time.Since(start)

	if err != nil {
		// Validation failures happen before any process is spawned.
		logger.Error("run rejected", zap.String("run_id", run.ID.String()), zap.Error(err))
		a.finishRun(ctx, run, models.RunFailed, 1, false, err.Error(), duration)
		a.ack(ctx, msgID)
		return
	}

	status := models.StatusForResult(result.ExitCode, result.TimedOut)
	logger.Info("run finished",
		zap.String("run_id", run.ID.String()),
		zap.Int("exit_code", result.ExitCode),
		zap.Bool("timed_out", result.TimedOut),
		zap.Duration("duration", duration))

	a.finishRun(ctx, run, status, result.ExitCode, result.TimedOut, result.Output, duration)
	a.ack(ctx, msgID)
}

// finishRun persists output and the final run record.
func (a *Agent) finishRun(ctx context.Context, run *models.Run, status models.RunStatus, exitCode int, timedOut bool, output string, duration time.Duration) {
	outputURI := ""
	if output != "" {
		uri, err := a.outputs.Store(ctx, run.ID.String(), []byte(output))
		if err != nil {
			logger.Error("failed to store run output", zap.String("run_id", run.ID.String()), zap.Error(err))
		} else {
			outputURI = uri
		}
	}

	metrics.RecordRun(run.Service, string(status), duration.Seconds())

	if err := a.runStore.UpdateResult(ctx, run.ID, status, exitCode, timedOut, outputURI); err != nil {
		logger.Error("failed to report result", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}

func (a *Agent) ack(ctx context.Context, msgID string) {
	if err := a.queue.Ack(ctx, consumerGroup, msgID); err != nil {
		logger.Warn("failed to ack run", zap.String("msg_id", msgID), zap.Error(err))
	}
}

// runConfigFor translates a queued run into an execution request. Log
// forwarding is enabled only when the run names a component.
func runConfigFor(run *models.Run) execution.RunConfig {
	cfg := execution.RunConfig{
		Command:        run.Command,
		Env:            run.Env,
		TimeoutSeconds: run.TimeoutSeconds,
	}
	if run.Component != "" {
		cfg.Log = &execution.LogOptions{
			ServiceName: run.Service,
			Component:   run.Component,
			Level:       run.Level,
			Cluster:     run.Cluster,
			Instance:    run.Instance,
		}
	}
	return cfg
}
