package manager

import "github.com/latentflip/jingle/jingle"

// Option customizes a Manager at construction time. Each option wraps the
// corresponding registration method; use whichever style reads better.
type Option func(*Manager)

// WithSignalLayer wires the outbound signaling path.
func WithSignalLayer(layer jingle.SignalLayer) Option {
	return func(m *Manager) { m.RegisterSignalLayer(layer) }
}

// WithApplicationType registers an application plugin.
func WithApplicationType(name string, factory jingle.ApplicationFactory) Option {
	return func(m *Manager) { m.RegisterApplicationType(name, factory) }
}

// WithTransportType registers a transport plugin.
func WithTransportType(name string, factory jingle.TransportFactory) Option {
	return func(m *Manager) { m.RegisterTransportType(name, factory) }
}

// WithSessionHandler registers an incoming-session observer.
func WithSessionHandler(h Handler) Option {
	return func(m *Manager) { m.OnSession(h) }
}
