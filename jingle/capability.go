package jingle

import (
	"context"
	"errors"
)

// ErrUnsupportedDescription reports a wire description whose concrete
// type does not belong to the plugin it was handed to.
var ErrUnsupportedDescription = errors.New("unsupported description type")

// ApplicationDescription is the wire description of an application,
// interpreted only by the matching application plugin.
type ApplicationDescription interface {
	ApplicationType() string
}

// TransportDescription is the wire description of a transport, interpreted
// only by the matching transport plugin.
type TransportDescription interface {
	TransportType() string
}

// Application is the capability contract an application plugin implements
// for one content. The engine drives it; it never drives the engine.
type Application interface {
	ApplicationType() string
	// Equivalent reports whether the offered content describes the same
	// application-level thing as this one. Used for tie-break detection,
	// which may call it concurrently with other methods.
	Equivalent(content RequestContent) bool
	ValidateTransport(transport Transport) bool
	SetTransport(ctx context.Context, transport Transport) error
	CreateOffer(ctx context.Context) (ApplicationDescription, error)
	CreateAnswer(ctx context.Context) (ApplicationDescription, error)
	ApplyOffer(ctx context.Context, desc ApplicationDescription) error
	ApplyAnswer(ctx context.Context, desc ApplicationDescription) error
	ApplyInfo(ctx context.Context, desc ApplicationDescription) error
	ChangeDirection(ctx context.Context, direction ContentDirection) error
	Stats(ctx context.Context) (any, error)
	End()
}

// Transport is the capability contract a transport plugin implements for
// one content.
type Transport interface {
	TransportType() string
	// Inband reports whether the transport negotiates in-band with the
	// session rather than out-of-band.
	Inband() bool
	CreateOffer(ctx context.Context) (TransportDescription, error)
	CreateAnswer(ctx context.Context) (TransportDescription, error)
	ApplyOffer(ctx context.Context, desc TransportDescription) error
	ApplyAnswer(ctx context.Context, desc TransportDescription) error
	ApplyInfo(ctx context.Context, desc TransportDescription) error
	OpenStreamChannel(ctx context.Context) error
	OpenDatagramChannel(ctx context.Context) error
	Stats(ctx context.Context) (any, error)
	End()
}

// ApplicationFactory constructs an Application from a wire description.
// A nil return means the description is unsupported.
type ApplicationFactory func(direction ContentDirection, desc ApplicationDescription) Application

// TransportFactory constructs a Transport from a wire description. A nil
// return means the description is unsupported.
type TransportFactory func(desc TransportDescription) Transport

// RequestProcessor is the inbound half of the manager, as seen by a signal
// layer delivering requests from the network.
type RequestProcessor interface {
	ProcessRequest(ctx context.Context, request Request, peer, me string) (Ack, error)
}

// SignalLayer carries outbound requests to the peer and resolves with the
// remote acknowledgment. The error return is for channel faults; protocol
// rejections arrive as non-Ok acks.
type SignalLayer interface {
	Signal(ctx context.Context, to, from string, request Request) (Ack, error)
	// UseSessionManager hands the layer the processor it should deliver
	// inbound requests to. Called once at registration.
	UseSessionManager(processor RequestProcessor)
}
