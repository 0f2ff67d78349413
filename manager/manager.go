// Package manager routes negotiation requests between sessions and the
// signal layer. It owns the session registry, the plugin registries for
// application and transport types, and the tie-break rules that decide
// which of two colliding session offers survives.
package manager

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/latentflip/jingle/base/log"
	"github.com/latentflip/jingle/jingle"
	"github.com/latentflip/jingle/session"
)

// ErrShutdown reports a call on a manager after Shutdown.
var ErrShutdown = errors.New("manager is shut down")

// Handler observes sessions created by incoming session-initiate
// requests. It runs after the session has processed its first request.
type Handler func(s *session.Session)

// Manager is the top-level entry point. It implements session.Services
// for the sessions it owns and jingle.RequestProcessor for its signal
// layer.
type Manager struct {
	signalMu    sync.RWMutex
	signalLayer jingle.SignalLayer

	store *session.Store

	regMu        sync.RWMutex
	applications map[string]jingle.ApplicationFactory
	transports   map[string]jingle.TransportFactory

	handlerMu sync.RWMutex
	handlers  []Handler

	running atomic.Bool
	fields  log.Fields
}

var (
	_ session.Services       = (*Manager)(nil)
	_ jingle.RequestProcessor = (*Manager)(nil)
)

func New(fields log.Fields, opts ...Option) *Manager {
	m := &Manager{
		store:        session.NewStore(),
		applications: map[string]jingle.ApplicationFactory{},
		transports:   map[string]jingle.TransportFactory{},
		fields:       fields.WithPrefix("manager"),
	}
	m.running.Store(true)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fields exposes the manager's logging context.
func (m *Manager) Fields() log.Fields {
	return m.fields
}

// RegisterSignalLayer wires the outbound path and hands the layer this
// manager as its inbound processor.
func (m *Manager) RegisterSignalLayer(layer jingle.SignalLayer) {
	m.signalMu.Lock()
	m.signalLayer = layer
	m.signalMu.Unlock()
	layer.UseSessionManager(m)
}

// RegisterApplicationType makes an application plugin available under its
// wire name.
func (m *Manager) RegisterApplicationType(name string, factory jingle.ApplicationFactory) {
	m.regMu.Lock()
	defer m.regMu.Unlock()
	m.applications[name] = factory
}

// RegisterTransportType makes a transport plugin available under its wire
// name.
func (m *Manager) RegisterTransportType(name string, factory jingle.TransportFactory) {
	m.regMu.Lock()
	defer m.regMu.Unlock()
	m.transports[name] = factory
}

// OnSession registers a handler for incoming sessions.
func (m *Manager) OnSession(h Handler) {
	m.handlerMu.Lock()
	defer m.handlerMu.Unlock()
	m.handlers = append(m.handlers, h)
}

func (m *Manager) fireSessionEvent(s *session.Session) {
	m.handlerMu.RLock()
	handlers := make([]Handler, len(m.handlers))
	copy(handlers, m.handlers)
	m.handlerMu.RUnlock()
	for _, h := range handlers {
		h(s)
	}
}

// CreateApplication resolves the plugin for an application description.
// Nil means unsupported.
func (m *Manager) CreateApplication(direction jingle.ContentDirection, desc jingle.ApplicationDescription) jingle.Application {
	if desc == nil {
		return nil
	}
	m.regMu.RLock()
	factory := m.applications[desc.ApplicationType()]
	m.regMu.RUnlock()
	if factory == nil {
		return nil
	}
	return factory(direction, desc)
}

// CreateTransport resolves the plugin for a transport description. Nil
// means unsupported.
func (m *Manager) CreateTransport(desc jingle.TransportDescription) jingle.Transport {
	if desc == nil {
		return nil
	}
	m.regMu.RLock()
	factory := m.transports[desc.TransportType()]
	m.regMu.RUnlock()
	if factory == nil {
		return nil
	}
	return factory(desc)
}

// Signal forwards an outbound request through the registered layer. With
// no layer registered every send acknowledges Ok, which keeps sessions
// usable in loopback and test setups.
func (m *Manager) Signal(ctx context.Context, to, from string, request jingle.Request) (jingle.Ack, error) {
	m.signalMu.RLock()
	layer := m.signalLayer
	m.signalMu.RUnlock()
	if layer == nil {
		return jingle.AckOk, nil
	}
	return layer.Signal(ctx, to, from, request)
}

// CreateSession builds an outgoing session towards peer with a fresh
// collision-free session id.
func (m *Manager) CreateSession(peer, me string) *session.Session {
	sid := uuid.NewString()
	for m.store.Get(peer, sid) != nil {
		sid = uuid.NewString()
	}
	return m.CreateSessionWithSID(peer, me, sid)
}

// CreateSessionWithSID builds an outgoing session under a caller-chosen
// session id. The caller owns uniqueness.
func (m *Manager) CreateSessionWithSID(peer, me, sid string) *session.Session {
	s := session.New(m, sid, me, peer, jingle.RoleInitiator, m.fields)
	m.store.Put(peer, s)
	return s
}

// Session looks up a held session.
func (m *Manager) Session(peer, sid string) *session.Session {
	return m.store.Get(peer, sid)
}

// Sessions snapshots every session held for one peer.
func (m *Manager) Sessions(peer string) []*session.Session {
	return m.store.ForPeer(peer)
}

// ProcessRequest routes one inbound request. Requests for established
// sessions are forwarded; a session-initiate may open a new session,
// subject to the tie-break rules; everything else is unknown.
func (m *Manager) ProcessRequest(ctx context.Context, request jingle.Request, peer, me string) (jingle.Ack, error) {
	if !m.running.Load() {
		return jingle.AckBadRequest, ErrShutdown
	}

	if s := m.store.Get(peer, request.SID); s != nil {
		if state := s.State(); state == jingle.SessionPending || state == jingle.SessionActive {
			return s.ProcessRequest(ctx, request)
		}
	}

	if request.Action != jingle.SessionInitiate {
		return jingle.AckUnknownSession, nil
	}

	if ack, decided := m.tieBreak(request, peer, me); decided {
		return ack, nil
	}

	s := session.New(m, request.SID, peer, me, jingle.RoleResponder, m.fields)
	m.store.Put(peer, s)
	ack, err := s.ProcessRequest(ctx, request)
	if err == nil && ack == jingle.AckOk {
		m.fireSessionEvent(s)
	}
	return ack, err
}

// tieBreak resolves glare between an incoming session-initiate and our
// own unacknowledged equivalent offer to the same peer. Both sides order
// the colliding sids by raw octets; the lower sid wins. Identical sids
// fall back to the participant identifiers, and a full tie is rejected
// outright since neither side can win deterministically.
func (m *Manager) tieBreak(request jingle.Request, peer, me string) (jingle.Ack, bool) {
	var pending *session.Session
	for _, existing := range m.store.ForPeer(peer) {
		if existing.Equivalent(request) {
			pending = existing
			break
		}
	}
	if pending == nil {
		return jingle.AckOk, false
	}

	fields := m.fields.WithFields(log.Fields{
		"peer":         peer,
		"incoming_sid": request.SID,
		"pending_sid":  pending.SID(),
	})
	switch order := jingle.OctetCompare(request.SID, pending.SID()); {
	case order > 0:
		fields.Debug("tie-break: our offer wins")
		return jingle.AckTieBreak, true
	case order == 0:
		switch userOrder := jingle.OctetCompare(peer, me); {
		case userOrder > 0:
			fields.Debug("tie-break: identical sids, our identifier wins")
			return jingle.AckTieBreak, true
		case userOrder == 0:
			fields.Warn("tie-break: indistinguishable colliding offers")
			return jingle.AckBadRequest, true
		}
	}
	fields.Debug("tie-break: incoming offer wins")
	return jingle.AckOk, false
}

// Shutdown stops routing and closes every session's queue. Idempotent.
func (m *Manager) Shutdown() {
	if !m.running.CompareAndSwap(true, false) {
		return
	}
	for _, s := range m.store.All() {
		s.Close()
	}
	m.fields.Info("manager shut down")
}
