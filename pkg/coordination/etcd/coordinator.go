package etcd

import (
	"context"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"

	"armada/pkg/coordination"
)

const (
	electionPrefix = "/armada/elections/"
	nodePrefix     = "/armada/nodes/"
)

type EtcdCoordinator struct {
	client  *clientv3.Client
	session *concurrency.Session
}

func NewEtcdCoordinator(endpoints []string, ttl int) (*EtcdCoordinator, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	// The concurrency session keeps the election lease alive via heartbeats.
	sess, err := concurrency.NewSession(cli, concurrency.WithTTL(ttl))
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to create concurrency session: %w", err)
	}

	return &EtcdCoordinator{
		client:  cli,
		session: sess,
	}, nil
}

func (c *EtcdCoordinator) Close() error {
	if c.session != nil {
		c.session.Close()
	}
	return c.client.Close()
}

func (c *EtcdCoordinator) NewElection(name string) coordination.Election {
	e := concurrency.NewElection(c.session, electionPrefix+name)
	return &EtcdElection{election: e}
}

// EtcdElection wraps the etcd concurrency.Election struct
type EtcdElection struct {
	election *concurrency.Election
}

func (e *EtcdElection) Campaign(ctx context.Context, value string) error {
	return e.election.Campaign(ctx, value)
}

func (e *EtcdElection) Resign(ctx context.Context) error {
	return e.election.Resign(ctx)
}

func (e *EtcdElection) Leader(ctx context.Context) (string, error) {
	resp, err := e.election.Leader(ctx)
	if err != nil {
		return "", err
	}
	return string(resp.Kvs[0].Value), nil
}

// RegisterNode puts the node key under a short lease. The agent heartbeat
// loop calls this repeatedly; a node that stops heartbeating falls out of
// the registry when its last lease expires.
func (c *EtcdCoordinator) RegisterNode(ctx context.Context, nodeID string, ttl int) error {
	lease, err := c.client.Grant(ctx, int64(ttl))
	if err != nil {
		return fmt.Errorf("failed to grant lease: %w", err)
	}

	_, err = c.client.Put(ctx, nodePrefix+nodeID, "ONLINE", clientv3.WithLease(lease.ID))
	if err != nil {
		return fmt.Errorf("failed to put node key: %w", err)
	}
	return nil
}

// GetActiveNodes lists node IDs with a live lease.
func (c *EtcdCoordinator) GetActiveNodes(ctx context.Context) ([]string, error) {
	resp, err := c.client.Get(ctx, nodePrefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	var nodes []string
	for _, kv := range resp.Kvs {
		nodes = append(nodes, strings.TrimPrefix(string(kv.Key), nodePrefix))
	}
	return nodes, nil
}
