package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	config "armada/configs"
	"armada/pkg/agent"
	"armada/pkg/coordination/etcd"
	"armada/pkg/execution"
	"armada/pkg/logger"
	"armada/pkg/logsink"
	"armada/pkg/resilience"
	"armada/pkg/storage"
	"armada/pkg/storage/postgres"
	"armada/pkg/storage/redis"
)

func main() {
	cfg := config.LoadConfig()
	log.Println("[Armada Agent] Starting up...")

	if _, err := logger.Init(logger.DefaultConfig("armada-agent")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize Postgres run store (needed for reporting)
	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	runStore, err := postgres.NewRunStore(connStr)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer runStore.Close()

	// Initialize Etcd for the heartbeat registry
	etcdCoord, err := etcd.NewEtcdCoordinator(cfg.EtcdEndpoints, cfg.LeaderElectionTTL)
	if err != nil {
		log.Fatalf("Failed to connect to etcd: %v", err)
	}
	defer etcdCoord.Close()

	// Initialize Redis run queue
	redisAddr := fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)
	queue, err := redis.NewRunQueue(redisAddr)
	if err != nil {
		log.Fatalf("Failed to initialize redis queue: %v", err)
	}
	defer queue.Close()

	outputs, err := storage.NewOutputStoreFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize output store: %v", err)
	}

	sink, err := buildSink(cfg, queue)
	if err != nil {
		log.Fatalf("Failed to initialize log sink: %v", err)
	}
	defer sink.Transport.Close()

	runner := execution.NewRunner(sink)

	go func() {
		sig := <-sigChan
		log.Printf("[Armada Agent] Received signal %v, shutting down...", sig)
		cancel()
	}()

	a := agent.NewAgent(cfg, etcdCoord, queue, runStore, outputs, runner)
	a.Start(ctx)
	log.Println("[Armada Agent] Shutdown complete.")
}

// buildSink wires the log transport named by LOG_TRANSPORT. The redis
// transport shares the run queue's connection pool.
func buildSink(cfg *config.Config, queue *redis.RunQueue) (*logsink.Sink, error) {
	switch cfg.LogTransport {
	case "redis":
		breaker := resilience.NewCircuitBreaker("log-transport", resilience.DefaultCircuitBreakerConfig())
		return logsink.NewSink(logsink.NewRedisTransport(queue.Client(), breaker)), nil
	case "file":
		transport, err := logsink.NewFileTransport(cfg.LogStreamDir)
		if err != nil {
			return nil, err
		}
		return logsink.NewSink(transport), nil
	default:
		return nil, fmt.Errorf("unknown log transport %q", cfg.LogTransport)
	}
}
