package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "armada/configs"
	"armada/pkg/api"
	"armada/pkg/coordination/etcd"
	"armada/pkg/logger"
	"armada/pkg/logsink"
	"armada/pkg/resilience"
	"armada/pkg/storage"
	"armada/pkg/storage/postgres"
	"armada/pkg/storage/redis"
)

func main() {
	cfg := config.LoadConfig()
	log.Println("[Armada API] Starting up...")

	if _, err := logger.Init(logger.DefaultConfig("armada-api")); err != nil {
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
	log.Println("[Armada API] Postgres connected.")

	// Initialize Etcd Coordinator
	etcdCoord, err := etcd.NewEtcdCoordinator(cfg.EtcdEndpoints, cfg.LeaderElectionTTL)
	if err != nil {
		log.Fatalf("Failed to connect to etcd: %v", err)
	}
	defer etcdCoord.Close()
	log.Println("[Armada API] Etcd connected.")

	// Initialize Redis run queue
	redisAddr := fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)
	queue, err := redis.NewRunQueue(redisAddr)
	if err != nil {
		log.Fatalf("Failed to initialize redis queue: %v", err)
	}
	defer queue.Close()
	log.Println("[Armada API] Redis connected.")

	outputs, err := storage.NewOutputStoreFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize output store: %v", err)
	}

	// Log sink shares the queue's Redis connection
	breaker := resilience.NewCircuitBreaker("log-transport", resilience.DefaultCircuitBreakerConfig())
	sink := logsink.NewSink(logsink.NewRedisTransport(queue.Client(), breaker))

	server := api.NewServer(api.Config{
		Port:        cfg.APIPort,
		RunStore:    runStore,
		Queue:       queue,
		Outputs:     outputs,
		Coordinator: etcdCoord,
		Election:    etcdCoord.NewElection("armada-monitor"),
		Sink:        sink,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Printf("[Armada API] Server error: %v", err)
		}
	}()

	log.Printf("[Armada API] Server started on port %s", cfg.APIPort)

	sig := <-sigChan
	log.Printf("[Armada API] Received signal %v, initiating graceful shutdown...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Armada API] Shutdown error: %v", err)
	}

	cancel()
	log.Println("[Armada API] Shutdown complete.")
}
