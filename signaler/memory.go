// Package signaler provides signal layer implementations. Memory wires
// managers living in the same process, which is enough for loopback
// negotiation and for tests that want a real two-party exchange.
package signaler

import (
	"context"
	"fmt"
	"sync"

	"github.com/latentflip/jingle/base/log"
	"github.com/latentflip/jingle/jingle"
)

// Memory is an in-process signaling fabric. Each participant takes an
// Endpoint keyed by its identifier; delivery is synchronous.
type Memory struct {
	mu         sync.RWMutex
	processors map[string]jingle.RequestProcessor

	fields log.Fields
}

func NewMemory(fields log.Fields) *Memory {
	return &Memory{
		processors: map[string]jingle.RequestProcessor{},
		fields:     fields.WithPrefix("signaler.memory"),
	}
}

// Endpoint returns the signal layer for one participant. Register it
// with that participant's manager.
func (m *Memory) Endpoint(identity string) *Endpoint {
	return &Endpoint{fabric: m, identity: identity}
}

func (m *Memory) register(identity string, processor jingle.RequestProcessor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processors[identity] = processor
}

func (m *Memory) deliver(ctx context.Context, to, from string, request jingle.Request) (jingle.Ack, error) {
	m.mu.RLock()
	processor := m.processors[to]
	m.mu.RUnlock()
	if processor == nil {
		return jingle.AckBadRequest, fmt.Errorf("no participant registered as %q", to)
	}
	m.fields.WithFields(log.Fields{
		"to":     to,
		"from":   from,
		"action": request.Action,
	}).Debug("delivering request")
	return processor.ProcessRequest(ctx, request, from, to)
}

// Endpoint is one participant's view of the fabric.
type Endpoint struct {
	fabric   *Memory
	identity string
}

var _ jingle.SignalLayer = (*Endpoint)(nil)

func (e *Endpoint) UseSessionManager(processor jingle.RequestProcessor) {
	e.fabric.register(e.identity, processor)
}

func (e *Endpoint) Signal(ctx context.Context, to, from string, request jingle.Request) (jingle.Ack, error) {
	return e.fabric.deliver(ctx, to, from, request)
}
