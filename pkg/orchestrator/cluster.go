// Package orchestrator is a reference caller that composes several shard
// endpoints into one cross-shard namespace: it fans findNeighbours out to
// every shard named by a remote continuation, merges the results, and
// releases visited-node bookkeeping across the cluster once a traversal
// completes. It is not part of the shard process itself (§6 names it an
// external collaborator) — it shows how one is built against pkg/api.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/clusograph/shard/pkg/graphengine"
	"github.com/clusograph/shard/pkg/logging"
	"github.com/clusograph/shard/pkg/parallel"
	"github.com/clusograph/shard/pkg/storage"
	"github.com/clusograph/shard/pkg/xshard"
)

// ShardClient is what the orchestrator needs from one shard: the subset of
// pkg/api's route table a cross-shard traversal actually drives.
type ShardClient interface {
	FindNeighbours(ctx context.Context, nodeID uint32, hops int, queryID string, nodePred, edgePred *graphengine.Predicate) ([]*storage.Node, []graphengine.RemoteContinuation, error)
	ClearVisited(ctx context.Context, queryID string) error
	Ping(ctx context.Context) error
}

// NodeResult pairs a node with the endpoint of the shard it was found on,
// since a cross-shard result set can no longer assume a single shard's id
// space.
type NodeResult struct {
	Endpoint string
	Node     *storage.Node
}

// Cluster is a named registry of shard endpoints plus the fan-out logic for
// multi-shard traversal.
type Cluster struct {
	clients map[string]ShardClient
	pool    *parallel.WorkerPool
	logger  logging.Logger

	// StrictMode controls what happens when a shard fails mid fan-out. false
	// (default) preserves the reference implementation's behavior: drop that
	// shard's results and keep going. true fails the whole call — see the
	// Open Question resolution in DESIGN.md.
	StrictMode bool
}

// New builds a Cluster over the given endpoint->client registry.
// workerCount bounds how many shards are queried concurrently (0 uses a
// single worker).
func New(clients map[string]ShardClient, workerCount int) *Cluster {
	return &Cluster{
		clients: clients,
		pool:    parallel.NewWorkerPool(workerCount),
		logger:  logging.DefaultLogger().With(logging.Component("orchestrator")),
	}
}

// Close releases the cluster's worker pool.
func (c *Cluster) Close() {
	c.pool.Close()
}

// shardRequest names one shard-local findNeighbours call to dispatch.
type shardRequest struct {
	endpoint string
	nodeID   uint32
	hops     int
}

type shardOutcome struct {
	endpoint string
	local    []*storage.Node
	remote   []graphengine.RemoteContinuation
	err      error
}

// FindNeighbours starts a bounded-hop traversal at startNode on
// startEndpoint and follows every remote continuation it's handed,
// resuming on the named shard, until no continuation remains. Results are
// deduplicated by endpoint and node id. Per §5/§9, a shard that fails mid
// fan-out is dropped unless StrictMode is set.
func (c *Cluster) FindNeighbours(ctx context.Context, startEndpoint string, startNode uint32, hops int, queryID string, nodePred, edgePred *graphengine.Predicate) ([]NodeResult, error) {
	var results []NodeResult
	seen := make(map[string]bool)
	queue := []shardRequest{{endpoint: startEndpoint, nodeID: startNode, hops: hops}}

	for len(queue) > 0 {
		batch := queue
		queue = nil

		for i, outcome := range c.fanOut(ctx, batch, queryID, nodePred, edgePred) {
			if outcome.err != nil {
				if c.StrictMode {
					return nil, fmt.Errorf("shard %s: %w", batch[i].endpoint, outcome.err)
				}
				c.logger.Warn("dropping shard from findNeighbours after error",
					logging.String("endpoint", batch[i].endpoint), logging.Error(outcome.err))
				continue
			}
			for _, n := range outcome.local {
				key := fmt.Sprintf("%s$%d", outcome.endpoint, n.ID)
				if seen[key] {
					continue
				}
				seen[key] = true
				results = append(results, NodeResult{Endpoint: outcome.endpoint, Node: n})
			}
			for _, rc := range outcome.remote {
				remoteID, err := xshard.ParseRemoteID(rc.RemoteID)
				if err != nil {
					c.logger.Warn("malformed remote continuation", logging.String("remote_id", rc.RemoteID), logging.Error(err))
					continue
				}
				queue = append(queue, shardRequest{endpoint: remoteID.Endpoint, nodeID: remoteID.LocalID, hops: rc.HopsRemaining})
			}
		}
	}

	return results, nil
}

func (c *Cluster) fanOut(ctx context.Context, batch []shardRequest, queryID string, nodePred, edgePred *graphengine.Predicate) []shardOutcome {
	outcomes := make([]shardOutcome, len(batch))
	var wg sync.WaitGroup
	wg.Add(len(batch))

	for i, req := range batch {
		i, req := i, req
		submitted := c.pool.Submit(func() {
			defer wg.Done()
			client, ok := c.clients[req.endpoint]
			if !ok {
				outcomes[i] = shardOutcome{endpoint: req.endpoint, err: fmt.Errorf("unknown shard endpoint %q", req.endpoint)}
				return
			}
			local, remote, err := client.FindNeighbours(ctx, req.nodeID, req.hops, queryID, nodePred, edgePred)
			outcomes[i] = shardOutcome{endpoint: req.endpoint, local: local, remote: remote, err: err}
		})
		if !submitted {
			wg.Done()
			outcomes[i] = shardOutcome{endpoint: req.endpoint, err: fmt.Errorf("orchestrator worker pool closed")}
		}
	}

	wg.Wait()
	return outcomes
}

// ClearVisited releases queryID's visited-node bookkeeping on every shard in
// the cluster. Per spec.md §8 scenario 6, every shard must be released, and
// a shard that never saw the query id tolerates the call as a no-op.
func (c *Cluster) ClearVisited(ctx context.Context, queryID string) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	errs := make([]error, 0, len(c.clients))

	for endpoint, client := range c.clients {
		endpoint, client := endpoint, client
		wg.Add(1)
		submitted := c.pool.Submit(func() {
			defer wg.Done()
			if err := client.ClearVisited(ctx, queryID); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("shard %s: %w", endpoint, err))
				mu.Unlock()
			}
		})
		if !submitted {
			wg.Done()
		}
	}
	wg.Wait()

	if len(errs) == 0 {
		return nil
	}
	if c.StrictMode {
		return fmt.Errorf("clearVisited failed on %d shard(s): %v", len(errs), errs)
	}
	for _, err := range errs {
		c.logger.Warn("clearVisited failed on shard", logging.Error(err))
	}
	return nil
}
