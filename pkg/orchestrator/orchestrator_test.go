package orchestrator

import (
	"context"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/clusograph/shard/pkg/api"
	"github.com/clusograph/shard/pkg/config"
	"github.com/clusograph/shard/pkg/graphengine"
	"github.com/clusograph/shard/pkg/storage"
)

// testShard is one in-process shard: its own storage file, graph engine,
// API server, and an httptest.Server fronting it, so the orchestrator's
// HTTPShardClient exercises the real HTTP route table end to end.
type testShard struct {
	name   string
	engine *graphengine.Engine
	server *httptest.Server
}

func newTestShard(t *testing.T, name string) *testShard {
	t.Helper()
	dir, err := os.MkdirTemp("", "shard-orchestrator-test")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := storage.Open(dir, name)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	engine := graphengine.New(store, 16)
	cfg := config.Defaults()
	cfg.Name = name
	apiServer := api.NewServer(engine, cfg, nil)
	httpServer := httptest.NewServer(apiServer.Handler())
	t.Cleanup(httpServer.Close)

	return &testShard{name: name, engine: engine, server: httpServer}
}

// TestClusterFindNeighboursFollowsRemoteContinuation exercises the
// cross-shard fan-out: a node on shard A has an edge to a remote
// placeholder naming a node on shard B, and the cluster should resume the
// traversal there and merge both shards' local matches.
func TestClusterFindNeighboursFollowsRemoteContinuation(t *testing.T) {
	shardA := newTestShard(t, "shard-a")
	shardB := newTestShard(t, "shard-b")

	aStart, err := shardA.engine.CreateNode(nil)
	if err != nil {
		t.Fatalf("CreateNode on shard A: %v", err)
	}
	bTarget, err := shardB.engine.CreateNode(nil)
	if err != nil {
		t.Fatalf("CreateNode on shard B: %v", err)
	}

	remoteID := shardB.name + "$" + strconv.FormatUint(uint64(bTarget), 10)
	if _, err := shardA.engine.CreateEdge(aStart, nil, nil, &remoteID, nil); err != nil {
		t.Fatalf("CreateEdge with remote target: %v", err)
	}

	clients := map[string]ShardClient{
		shardA.name: NewHTTPShardClient(shardA.name, shardA.server.URL, ""),
		shardB.name: NewHTTPShardClient(shardB.name, shardB.server.URL, ""),
	}
	cluster := New(clients, 4)
	defer cluster.Close()

	results, err := cluster.FindNeighbours(context.Background(), shardA.name, aStart, 2, "test-query", nil, nil)
	if err != nil {
		t.Fatalf("FindNeighbours: %v", err)
	}

	var sawA, sawB bool
	for _, r := range results {
		if r.Endpoint == shardA.name && r.Node.ID == aStart {
			sawA = true
		}
		if r.Endpoint == shardB.name && r.Node.ID == bTarget {
			sawB = true
		}
	}
	if !sawA {
		t.Errorf("expected shard A's start node in results, got %+v", results)
	}
	if !sawB {
		t.Errorf("expected the remote continuation to resume on shard B and find its node, got %+v", results)
	}
}

// TestClusterClearVisitedReleasesEveryShard exercises the companion
// teardown call: ClearVisited must reach every registered shard, including
// one that never saw the query id, and treat that as a no-op rather than
// an error.
func TestClusterClearVisitedReleasesEveryShard(t *testing.T) {
	shardA := newTestShard(t, "shard-a")
	shardB := newTestShard(t, "shard-b")

	clients := map[string]ShardClient{
		shardA.name: NewHTTPShardClient(shardA.name, shardA.server.URL, ""),
		shardB.name: NewHTTPShardClient(shardB.name, shardB.server.URL, ""),
	}
	cluster := New(clients, 4)
	defer cluster.Close()

	if err := cluster.ClearVisited(context.Background(), "never-seen-query"); err != nil {
		t.Fatalf("ClearVisited: %v", err)
	}
}

// TestClusterFindNeighboursDropsDeadShardUnlessStrict exercises the Open
// Question resolution recorded in DESIGN.md: a shard that errors mid
// fan-out is dropped by default, but fails the whole call under
// StrictMode.
func TestClusterFindNeighboursDropsDeadShardUnlessStrict(t *testing.T) {
	shardA := newTestShard(t, "shard-a")
	aStart, err := shardA.engine.CreateNode(nil)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	remoteID := "shard-missing$1"
	if _, err := shardA.engine.CreateEdge(aStart, nil, nil, &remoteID, nil); err != nil {
		t.Fatalf("CreateEdge with remote target: %v", err)
	}

	clients := map[string]ShardClient{
		shardA.name: NewHTTPShardClient(shardA.name, shardA.server.URL, ""),
	}

	lenient := New(clients, 4)
	defer lenient.Close()
	results, err := lenient.FindNeighbours(context.Background(), shardA.name, aStart, 2, "test-query", nil, nil)
	if err != nil {
		t.Fatalf("lenient FindNeighbours: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only shard A's start node, got %+v", results)
	}

	strict := New(clients, 4)
	strict.StrictMode = true
	defer strict.Close()
	if _, err := strict.FindNeighbours(context.Background(), shardA.name, aStart, 2, "test-query-2", nil, nil); err == nil {
		t.Fatal("expected StrictMode to surface the unknown-endpoint error")
	}
}
