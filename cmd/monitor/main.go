package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	config "armada/configs"
	"armada/pkg/coordination/etcd"
	"armada/pkg/execution"
	"armada/pkg/logger"
	"armada/pkg/logsink"
	"armada/pkg/monitor"
	"armada/pkg/resilience"
	"armada/pkg/storage/postgres"
	"armada/pkg/storage/redis"
)

func main() {
	cfg := config.LoadConfig()
	log.Println("[Armada Monitor] Starting up...")

	if _, err := logger.Init(logger.DefaultConfig("armada-monitor")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize Postgres run store
	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	runStore, err := postgres.NewRunStore(connStr)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer runStore.Close()
	log.Println("[Armada Monitor] Postgres connected.")

	// Initialize Redis run queue (for queue depth reporting)
	redisAddr := fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)
	queue, err := redis.NewRunQueue(redisAddr)
	if err != nil {
		log.Fatalf("Failed to initialize redis queue: %v", err)
	}
	defer queue.Close()
	log.Println("[Armada Monitor] Redis connected.")

	// Initialize Etcd Coordinator
	etcdCoord, err := etcd.NewEtcdCoordinator(cfg.EtcdEndpoints, cfg.LeaderElectionTTL)
	if err != nil {
		log.Fatalf("Failed to connect to etcd: %v", err)
	}
	defer etcdCoord.Close()
	log.Println("[Armada Monitor] Connected to Etcd.")

	checks, err := monitor.LoadChecks(cfg.MonitorChecksFile)
	if err != nil {
		log.Fatalf("Failed to load checks: %v", err)
	}
	log.Printf("[Armada Monitor] Loaded %d checks from %s", len(checks), cfg.MonitorChecksFile)

	interval, err := time.ParseDuration(cfg.MonitorInterval)
	if err != nil {
		interval = 10 * time.Second
	}

	// Check output goes to the redis log streams
	breaker := resilience.NewCircuitBreaker("log-transport", resilience.DefaultCircuitBreakerConfig())
	sink := logsink.NewSink(logsink.NewRedisTransport(queue.Client(), breaker))
	runner := execution.NewRunner(sink)

	core, err := monitor.NewCore(checks, interval, runner, runStore, queue, etcdCoord)
	if err != nil {
		log.Fatalf("Failed to initialize monitor: %v", err)
	}

	// Leader election: only one monitor runs checks at a time
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "monitor-" + uuid.New().String()
	}
	election := etcdCoord.NewElection("armada-monitor")

	log.Printf("Follower: requesting leadership as %s...", hostname)
	if err := election.Campaign(ctx, hostname); err != nil {
		log.Fatalf("Election campaign failed: %v", err)
	}
	log.Println("Leader: starting check loop.")

	go func() {
		core.Run(ctx, election)
	}()

	sig := <-sigChan
	log.Printf("[Armada Monitor] Received signal %v, initiating graceful shutdown...", sig)

	cancel()

	// Resign leadership so another monitor can take over quickly
	if err := election.Resign(context.Background()); err != nil {
		log.Printf("[Armada Monitor] Warning: failed to resign leadership: %v", err)
	} else {
		log.Println("[Armada Monitor] Leadership resigned.")
	}

	log.Println("[Armada Monitor] Shutdown complete.")
}
