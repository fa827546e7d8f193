package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/clusograph/shard/pkg/graphengine"
	"github.com/clusograph/shard/pkg/storage"
)

// HTTPShardClient drives one shard's pkg/api surface over plain HTTP,
// matching the teacher's pattern of a thin client struct wrapping
// *http.Client with a base URL (see pkg/api/server_config.go's sibling
// client code).
type HTTPShardClient struct {
	Endpoint string
	BaseURL  string
	Token    string
	HTTP     *http.Client
}

// NewHTTPShardClient builds a client for one shard endpoint.
func NewHTTPShardClient(endpoint, baseURL, token string) *HTTPShardClient {
	return &HTTPShardClient{
		Endpoint: endpoint,
		BaseURL:  baseURL,
		Token:    token,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

var _ ShardClient = (*HTTPShardClient)(nil)

func (c *HTTPShardClient) newRequest(ctx context.Context, method, path string, query url.Values) (*http.Request, error) {
	full := c.BaseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, full, nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// Ping calls GET /ping.
func (c *HTTPShardClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("ping %s: %w", c.Endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping %s: status %d", c.Endpoint, resp.StatusCode)
	}
	return nil
}

// FindNeighbours calls GET /findNeighbours.
func (c *HTTPShardClient) FindNeighbours(ctx context.Context, nodeID uint32, hops int, queryID string, nodePred, edgePred *graphengine.Predicate) ([]*storage.Node, []graphengine.RemoteContinuation, error) {
	query := url.Values{
		"node_id":  {strconv.FormatUint(uint64(nodeID), 10)},
		"hops":     {strconv.Itoa(hops)},
		"query_id": {queryID},
	}
	if raw, err := encodePredicate(nodePred); err != nil {
		return nil, nil, err
	} else if raw != "" {
		query.Set("node_predicate", raw)
	}
	if raw, err := encodePredicate(edgePred); err != nil {
		return nil, nil, err
	} else if raw != "" {
		query.Set("edge_predicate", raw)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/findNeighbours", query)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("findNeighbours %s: %w", c.Endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("findNeighbours %s: status %d", c.Endpoint, resp.StatusCode)
	}

	var body struct {
		LocalMatches []struct {
			NodeID uint32                    `json:"node_id"`
			Props  map[string]json.RawMessage `json:"props"`
		} `json:"neighbours"`
		RemoteContinuations []struct {
			RemoteID      string `json:"remote_id"`
			HopsRemaining int    `json:"hops_remaining"`
		} `json:"remote_nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil, fmt.Errorf("findNeighbours %s: decode response: %w", c.Endpoint, err)
	}

	local := make([]*storage.Node, 0, len(body.LocalMatches))
	for _, n := range body.LocalMatches {
		props, err := decodeWireProps(n.Props)
		if err != nil {
			return nil, nil, fmt.Errorf("findNeighbours %s: node %d: %w", c.Endpoint, n.NodeID, err)
		}
		local = append(local, &storage.Node{ID: n.NodeID, Props: props})
	}

	remote := make([]graphengine.RemoteContinuation, 0, len(body.RemoteContinuations))
	for _, rc := range body.RemoteContinuations {
		remote = append(remote, graphengine.RemoteContinuation{RemoteID: rc.RemoteID, HopsRemaining: rc.HopsRemaining})
	}

	return local, remote, nil
}

// ClearVisited calls PUT /clearVisitedNodes.
func (c *HTTPShardClient) ClearVisited(ctx context.Context, queryID string) error {
	query := url.Values{"query_id": {queryID}}
	req, err := c.newRequest(ctx, http.MethodPut, "/clearVisitedNodes", query)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("clearVisitedNodes %s: %w", c.Endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clearVisitedNodes %s: status %d", c.Endpoint, resp.StatusCode)
	}
	return nil
}
