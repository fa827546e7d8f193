package orchestrator

import "context"

// Pinger is a narrow liveness check the cluster registry can use before
// trusting a shard's FindNeighbours/ClearVisited results, independent of
// the transport a given ShardClient uses for the actual graph RPCs. The
// default is HTTPShardClient.Ping itself (ShardClient already embeds
// Pinger's one method); zmqping.go and nngping.go provide alternate
// transports for environments where the shard fleet exposes a liveness
// socket instead of (or in addition to) the HTTP surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck pings every registered shard and returns the subset of
// endpoints that failed to respond. It does not remove them from the
// cluster — callers decide what to do with a dead shard (exclude it from
// the next FindNeighbours call, page someone, etc).
func (c *Cluster) HealthCheck(ctx context.Context) []string {
	type result struct {
		endpoint string
		ok       bool
	}
	results := make(chan result, len(c.clients))

	for endpoint, client := range c.clients {
		endpoint, client := endpoint, client
		submitted := c.pool.Submit(func() {
			results <- result{endpoint: endpoint, ok: client.Ping(ctx) == nil}
		})
		if !submitted {
			results <- result{endpoint: endpoint, ok: false}
		}
	}

	var dead []string
	for i := 0; i < len(c.clients); i++ {
		r := <-results
		if !r.ok {
			dead = append(dead, r.endpoint)
		}
	}
	return dead
}
