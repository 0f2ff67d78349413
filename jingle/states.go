package jingle

// SessionRole identifies which side of the negotiation a participant is on.
type SessionRole string

const (
	RoleInitiator SessionRole = "initiator"
	RoleResponder SessionRole = "responder"
)

func (r SessionRole) String() string {
	return string(r)
}

// Peer returns the opposite role.
func (r SessionRole) Peer() SessionRole {
	if r == RoleInitiator {
		return RoleResponder
	}
	return RoleInitiator
}

// SessionState is the lifecycle state of a Session. The initiator passes
// through Unacked while its session-initiate is in flight; the responder
// goes straight from Starting to Pending. Ended is terminal.
type SessionState int32

const (
	SessionStarting SessionState = iota
	SessionUnacked
	SessionPending
	SessionActive
	SessionEnded
)

var sessionStateNames = map[SessionState]string{
	SessionStarting: "starting",
	SessionUnacked:  "unacked",
	SessionPending:  "pending",
	SessionActive:   "active",
	SessionEnded:    "ended",
}

func (s SessionState) String() string {
	if name, ok := sessionStateNames[s]; ok {
		return name
	}
	return "invalid-session-state"
}

// ContentState is the lifecycle state of a Content. Rejected and Removed
// are terminal.
type ContentState int32

const (
	ContentStarting ContentState = iota
	ContentUnacked
	ContentPending
	ContentActive
	ContentRejected
	ContentRemoved
)

var contentStateNames = map[ContentState]string{
	ContentStarting: "starting",
	ContentUnacked:  "unacked",
	ContentPending:  "pending",
	ContentActive:   "active",
	ContentRejected: "rejected",
	ContentRemoved:  "removed",
}

func (s ContentState) String() string {
	if name, ok := contentStateNames[s]; ok {
		return name
	}
	return "invalid-content-state"
}

// Live reports whether a content in this state is still part of the
// negotiation.
func (s ContentState) Live() bool {
	return s == ContentUnacked || s == ContentPending || s == ContentActive
}

// ContentSenders declares which participants may send data on a content.
// It is protocol-visible and independent of the viewing role. The empty
// value means unspecified and defaults to SendersBoth.
type ContentSenders string

const (
	SendersInitiator ContentSenders = "initiator"
	SendersResponder ContentSenders = "responder"
	SendersBoth      ContentSenders = "both"
	SendersNone      ContentSenders = "none"
)

func (s ContentSenders) String() string {
	return string(s)
}

// ContentDirection is the per-viewer data flow derived from senders and
// the viewer's session role.
type ContentDirection string

const (
	DirectionSend     ContentDirection = "send"
	DirectionRecv     ContentDirection = "recv"
	DirectionSendRecv ContentDirection = "sendrecv"
	DirectionNone     ContentDirection = "none"
)

func (d ContentDirection) String() string {
	return string(d)
}

// Swap returns the direction as seen from the other side.
func (d ContentDirection) Swap() ContentDirection {
	switch d {
	case DirectionSend:
		return DirectionRecv
	case DirectionRecv:
		return DirectionSend
	default:
		return d
	}
}

// DirectionFor derives the direction a participant with the given role
// observes for the given senders value. For any senders and role,
// DirectionFor(senders, role) == DirectionFor(senders, role.Peer()).Swap().
func DirectionFor(senders ContentSenders, role SessionRole) ContentDirection {
	switch senders {
	case SendersInitiator:
		if role == RoleInitiator {
			return DirectionSend
		}
		return DirectionRecv
	case SendersResponder:
		if role == RoleResponder {
			return DirectionSend
		}
		return DirectionRecv
	case SendersNone:
		return DirectionNone
	default:
		return DirectionSendRecv
	}
}
