// Package testutils provides stub capabilities and a scriptable signal
// layer for exercising the negotiation engine without real media or a
// real network.
package testutils

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/latentflip/jingle/jingle"
)

// StubType is the wire name stub descriptions register under.
const StubType = "stub"

// StubDescription satisfies both description interfaces.
type StubDescription struct {
	Kind string
}

func (d StubDescription) ApplicationType() string { return d.Kind }
func (d StubDescription) TransportType() string   { return d.Kind }

// NewStubDescription returns a description of the default stub kind.
func NewStubDescription() StubDescription {
	return StubDescription{Kind: StubType}
}

// StubApplication is an application whose every operation succeeds. Any
// content payload counts as equivalent, which makes tie-break scenarios
// trivial to provoke.
type StubApplication struct {
	Direction jingle.ContentDirection

	// RejectTransports makes ValidateTransport fail, for exercising
	// incompatible-transport handling.
	RejectTransports bool

	ended atomic.Bool
}

var _ jingle.Application = (*StubApplication)(nil)

func NewStubApplication() *StubApplication {
	return &StubApplication{Direction: jingle.DirectionSendRecv}
}

// StubApplicationFactory plugs StubApplication into a manager.
func StubApplicationFactory(direction jingle.ContentDirection, _ jingle.ApplicationDescription) jingle.Application {
	return &StubApplication{Direction: direction}
}

func (a *StubApplication) ApplicationType() string { return StubType }

func (a *StubApplication) Equivalent(jingle.RequestContent) bool { return true }

func (a *StubApplication) ValidateTransport(jingle.Transport) bool { return !a.RejectTransports }

func (a *StubApplication) SetTransport(context.Context, jingle.Transport) error { return nil }

func (a *StubApplication) CreateOffer(context.Context) (jingle.ApplicationDescription, error) {
	return NewStubDescription(), nil
}

func (a *StubApplication) CreateAnswer(context.Context) (jingle.ApplicationDescription, error) {
	return NewStubDescription(), nil
}

func (a *StubApplication) ApplyOffer(context.Context, jingle.ApplicationDescription) error { return nil }

func (a *StubApplication) ApplyAnswer(context.Context, jingle.ApplicationDescription) error {
	return nil
}

func (a *StubApplication) ApplyInfo(context.Context, jingle.ApplicationDescription) error { return nil }

func (a *StubApplication) ChangeDirection(_ context.Context, direction jingle.ContentDirection) error {
	a.Direction = direction
	return nil
}

func (a *StubApplication) Stats(context.Context) (any, error) { return nil, nil }

func (a *StubApplication) End() { a.ended.Store(true) }

// Ended reports whether the engine released this application.
func (a *StubApplication) Ended() bool { return a.ended.Load() }

// StubTransport is a transport whose every operation succeeds.
type StubTransport struct {
	ended atomic.Bool
}

var _ jingle.Transport = (*StubTransport)(nil)

func NewStubTransport() *StubTransport { return &StubTransport{} }

// StubTransportFactory plugs StubTransport into a manager.
func StubTransportFactory(_ jingle.TransportDescription) jingle.Transport {
	return &StubTransport{}
}

func (t *StubTransport) TransportType() string { return StubType }

func (t *StubTransport) Inband() bool { return false }

func (t *StubTransport) CreateOffer(context.Context) (jingle.TransportDescription, error) {
	return NewStubDescription(), nil
}

func (t *StubTransport) CreateAnswer(context.Context) (jingle.TransportDescription, error) {
	return NewStubDescription(), nil
}

func (t *StubTransport) ApplyOffer(context.Context, jingle.TransportDescription) error { return nil }

func (t *StubTransport) ApplyAnswer(context.Context, jingle.TransportDescription) error { return nil }

func (t *StubTransport) ApplyInfo(context.Context, jingle.TransportDescription) error { return nil }

func (t *StubTransport) OpenStreamChannel(context.Context) error { return nil }

func (t *StubTransport) OpenDatagramChannel(context.Context) error { return nil }

func (t *StubTransport) Stats(context.Context) (any, error) { return nil, nil }

func (t *StubTransport) End() { t.ended.Store(true) }

// Ended reports whether the engine released this transport.
func (t *StubTransport) Ended() bool { return t.ended.Load() }

// FakeSignalLayer records outbound requests and lets tests script the
// acks the far side would return. Without scripting, every send resolves
// Ok.
type FakeSignalLayer struct {
	Local  string
	Remote string

	mu         sync.Mutex
	processor  jingle.RequestProcessor
	inspectors []func(jingle.Request)
	nextAcks   []jingle.Ack
	sent       []jingle.Request

	sentCount atomic.Int32
}

var _ jingle.SignalLayer = (*FakeSignalLayer)(nil)

func NewFakeSignalLayer(local, remote string) *FakeSignalLayer {
	return &FakeSignalLayer{Local: local, Remote: remote}
}

func (f *FakeSignalLayer) UseSessionManager(processor jingle.RequestProcessor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processor = processor
}

// Signal records the outbound request, runs the next queued inspector on
// it and resolves with the next scripted ack.
func (f *FakeSignalLayer) Signal(_ context.Context, _, _ string, request jingle.Request) (jingle.Ack, error) {
	f.mu.Lock()
	f.sent = append(f.sent, request)
	var inspector func(jingle.Request)
	if len(f.inspectors) > 0 {
		inspector = f.inspectors[0]
		f.inspectors = f.inspectors[1:]
	}
	ack := jingle.AckOk
	if len(f.nextAcks) > 0 {
		ack = f.nextAcks[0]
		f.nextAcks = f.nextAcks[1:]
	}
	f.mu.Unlock()

	f.sentCount.Inc()
	if inspector != nil {
		inspector(request)
	}
	return ack, nil
}

// InspectNextRequest runs fn on the next outbound request.
func (f *FakeSignalLayer) InspectNextRequest(fn func(jingle.Request)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inspectors = append(f.inspectors, fn)
}

// AckNextRequest scripts the ack for the next outbound request.
func (f *FakeSignalLayer) AckNextRequest(ack jingle.Ack) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextAcks = append(f.nextAcks, ack)
}

// Deliver injects a request as if the remote participant had sent it.
func (f *FakeSignalLayer) Deliver(ctx context.Context, request jingle.Request) (jingle.Ack, error) {
	f.mu.Lock()
	processor := f.processor
	f.mu.Unlock()
	if processor == nil {
		return jingle.AckOk, nil
	}
	return processor.ProcessRequest(ctx, request, f.Remote, f.Local)
}

// Sent snapshots every request sent so far.
func (f *FakeSignalLayer) Sent() []jingle.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]jingle.Request, len(f.sent))
	copy(out, f.sent)
	return out
}

// SentCount is the number of outbound requests so far.
func (f *FakeSignalLayer) SentCount() int {
	return int(f.sentCount.Load())
}
