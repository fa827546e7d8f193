//go:build nng

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/surveyor"

	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// NNGPinger checks shard liveness with a one-shot survey: the orchestrator
// acts as surveyor, the shard's respondent socket answers within the
// survey window. Mirrors the teacher's surveyor/respondent pairing, used
// here for a single respondent instead of a fleet-wide broadcast.
type NNGPinger struct {
	Endpoint string // e.g. "tcp://shard-b:9093"
	Timeout  time.Duration
}

func NewNNGPinger(endpoint string, timeout time.Duration) *NNGPinger {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &NNGPinger{Endpoint: endpoint, Timeout: timeout}
}

func (p *NNGPinger) Ping(ctx context.Context) error {
	sock, err := surveyor.NewSocket()
	if err != nil {
		return fmt.Errorf("nng ping %s: new socket: %w", p.Endpoint, err)
	}
	defer sock.Close()

	if err := sock.SetOption(mangos.OptionSurveyTime, p.Timeout); err != nil {
		return fmt.Errorf("nng ping %s: set survey time: %w", p.Endpoint, err)
	}
	if err := sock.Dial(p.Endpoint); err != nil {
		return fmt.Errorf("nng ping %s: dial: %w", p.Endpoint, err)
	}

	if err := sock.Send([]byte("ping")); err != nil {
		return fmt.Errorf("nng ping %s: send: %w", p.Endpoint, err)
	}
	if _, err := sock.Recv(); err != nil {
		return fmt.Errorf("nng ping %s: no reply within %s: %w", p.Endpoint, p.Timeout, err)
	}
	return nil
}

var _ Pinger = (*NNGPinger)(nil)
