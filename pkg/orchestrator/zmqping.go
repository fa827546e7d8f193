//go:build zmq

package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	zmq "github.com/pebbe/zmq4"
)

// ZMQPinger checks shard liveness over the same ROUTER health-check socket
// the teacher's replication primary exposes, rather than pkg/api's HTTP
// /ping: a REQ socket dials the shard's health endpoint, sends a heartbeat,
// and waits for the reply within the configured timeout.
type ZMQPinger struct {
	Endpoint string // e.g. "tcp://shard-b:9091"
	Timeout  time.Duration
}

func NewZMQPinger(endpoint string, timeout time.Duration) *ZMQPinger {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &ZMQPinger{Endpoint: endpoint, Timeout: timeout}
}

type zmqHeartbeat struct {
	From string `json:"from"`
}

// Ping dials, sends, and tears the socket back down — a liveness probe
// has no reason to hold a long-lived connection open.
func (p *ZMQPinger) Ping(ctx context.Context) error {
	sock, err := zmq.NewSocket(zmq.REQ)
	if err != nil {
		return fmt.Errorf("zmq ping %s: new socket: %w", p.Endpoint, err)
	}
	defer sock.Close()

	if err := sock.SetRcvtimeo(p.Timeout); err != nil {
		return fmt.Errorf("zmq ping %s: set timeout: %w", p.Endpoint, err)
	}
	if err := sock.SetSndtimeo(p.Timeout); err != nil {
		return fmt.Errorf("zmq ping %s: set timeout: %w", p.Endpoint, err)
	}
	if err := sock.Connect(p.Endpoint); err != nil {
		return fmt.Errorf("zmq ping %s: connect: %w", p.Endpoint, err)
	}

	payload, err := json.Marshal(zmqHeartbeat{From: "orchestrator"})
	if err != nil {
		return fmt.Errorf("zmq ping %s: marshal heartbeat: %w", p.Endpoint, err)
	}
	if _, err := sock.SendMessage("", payload); err != nil {
		return fmt.Errorf("zmq ping %s: send: %w", p.Endpoint, err)
	}

	if _, err := sock.RecvMessage(0); err != nil {
		return fmt.Errorf("zmq ping %s: no reply within %s: %w", p.Endpoint, p.Timeout, err)
	}
	return nil
}

var _ Pinger = (*ZMQPinger)(nil)
