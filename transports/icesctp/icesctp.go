// Package icesctp implements a transport type backed by a WebRTC peer
// connection: ICE for connectivity, SCTP data channels for the payload.
// Candidates trickle through transport-info requests.
package icesctp

import (
	"context"

	"github.com/pion/webrtc/v4"

	"github.com/latentflip/jingle/jingle"
)

// Namespace is the wire name of the transport type.
const Namespace = "urn:xmpp:jingle:transports:ice-sctp:1"

// Candidate is one trickled ICE candidate.
type Candidate struct {
	Candidate     string
	SDPMid        string
	SDPMLineIndex uint16
}

// Description is the wire description. SDP carries the full local
// description; Candidates is used on transport-info payloads.
type Description struct {
	UsernameFragment string
	Password         string
	SDP              string
	Candidates       []Candidate
}

var _ jingle.TransportDescription = Description{}

func (Description) TransportType() string { return Namespace }

const (
	streamChannelID   uint16 = 0
	datagramChannelID uint16 = 1
)

// Transport owns one peer connection for one content.
type Transport struct {
	connection *webrtc.PeerConnection
}

var _ jingle.Transport = (*Transport)(nil)

// New opens a peer connection with the given ICE servers.
func New(iceServers ...webrtc.ICEServer) (*Transport, error) {
	connection, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
	if err != nil {
		return nil, err
	}
	return &Transport{connection: connection}, nil
}

// Factory plugs the transport type into a manager. Unsupported
// descriptions and connection failures resolve to nil.
func Factory(desc jingle.TransportDescription) jingle.Transport {
	if _, ok := desc.(Description); !ok {
		return nil
	}
	t, err := New()
	if err != nil {
		return nil
	}
	return t
}

func (t *Transport) TransportType() string { return Namespace }

// Inband reports that candidate exchange rides on the session itself.
func (t *Transport) Inband() bool { return true }

// Connection exposes the underlying peer connection for callers that
// need to attach handlers.
func (t *Transport) Connection() *webrtc.PeerConnection { return t.connection }

func (t *Transport) CreateOffer(context.Context) (jingle.TransportDescription, error) {
	offer, err := t.connection.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	if err := t.connection.SetLocalDescription(offer); err != nil {
		return nil, err
	}
	return Description{SDP: offer.SDP}, nil
}

func (t *Transport) CreateAnswer(context.Context) (jingle.TransportDescription, error) {
	answer, err := t.connection.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	if err := t.connection.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	return Description{SDP: answer.SDP}, nil
}

func (t *Transport) ApplyOffer(_ context.Context, desc jingle.TransportDescription) error {
	td, ok := desc.(Description)
	if !ok {
		return jingle.ErrUnsupportedDescription
	}
	return t.connection.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  td.SDP,
	})
}

func (t *Transport) ApplyAnswer(_ context.Context, desc jingle.TransportDescription) error {
	td, ok := desc.(Description)
	if !ok {
		return jingle.ErrUnsupportedDescription
	}
	return t.connection.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  td.SDP,
	})
}

// ApplyInfo feeds trickled candidates into the ICE agent.
func (t *Transport) ApplyInfo(_ context.Context, desc jingle.TransportDescription) error {
	td, ok := desc.(Description)
	if !ok {
		return jingle.ErrUnsupportedDescription
	}
	for _, c := range td.Candidates {
		c := c
		init := webrtc.ICECandidateInit{
			Candidate:     c.Candidate,
			SDPMid:        &c.SDPMid,
			SDPMLineIndex: &c.SDPMLineIndex,
		}
		if err := t.connection.AddICECandidate(init); err != nil {
			return err
		}
	}
	return nil
}

// OpenStreamChannel opens the pre-negotiated ordered reliable channel.
func (t *Transport) OpenStreamChannel(context.Context) error {
	ordered := true
	negotiated := true
	id := streamChannelID
	_, err := t.connection.CreateDataChannel("stream", &webrtc.DataChannelInit{
		Ordered:    &ordered,
		Negotiated: &negotiated,
		ID:         &id,
	})
	return err
}

// OpenDatagramChannel opens the pre-negotiated unordered lossy channel.
func (t *Transport) OpenDatagramChannel(context.Context) error {
	ordered := false
	negotiated := true
	id := datagramChannelID
	maxRetransmits := uint16(0)
	_, err := t.connection.CreateDataChannel("datagram", &webrtc.DataChannelInit{
		Ordered:        &ordered,
		Negotiated:     &negotiated,
		ID:             &id,
		MaxRetransmits: &maxRetransmits,
	})
	return err
}

func (t *Transport) Stats(context.Context) (any, error) {
	return t.connection.GetStats(), nil
}

func (t *Transport) End() {
	_ = t.connection.Close()
}
