package jingle

// Disposition values for a content. Session contents are negotiated as part
// of the main session; early-session contents before full establishment.
const (
	DispositionSession      = "session"
	DispositionEarlySession = "early-session"
)

// ReasonCondition is the closed set of machine-readable teardown reasons.
type ReasonCondition string

const (
	ReasonAlternativeSession      ReasonCondition = "alternative-session"
	ReasonBusy                    ReasonCondition = "busy"
	ReasonCancel                  ReasonCondition = "cancel"
	ReasonConnectivityError       ReasonCondition = "connectivity-error"
	ReasonDecline                 ReasonCondition = "decline"
	ReasonExpired                 ReasonCondition = "expired"
	ReasonFailedApplication       ReasonCondition = "failed-application"
	ReasonFailedTransport         ReasonCondition = "failed-transport"
	ReasonGeneralError            ReasonCondition = "general-error"
	ReasonGone                    ReasonCondition = "gone"
	ReasonIncompatibleParameters  ReasonCondition = "incompatible-parameters"
	ReasonMediaError              ReasonCondition = "media-error"
	ReasonSecurityError           ReasonCondition = "security-error"
	ReasonSuccess                 ReasonCondition = "success"
	ReasonTimeout                 ReasonCondition = "timeout"
	ReasonUnsupportedApplications ReasonCondition = "unsupported-applications"
	ReasonUnsupportedTransports   ReasonCondition = "unsupported-transports"
)

// Reason explains a rejection or teardown.
type Reason struct {
	Condition ReasonCondition
	Text      string
	SID       string
}

// Info is an opaque session-info payload.
type Info struct {
	InfoType string
}

// Request is the logical wire shape of one negotiation request. Byte-level
// framing belongs to the signaling collaborator, not to the engine.
type Request struct {
	Action    Action
	SID       string
	Initiator string
	Responder string
	Contents  []RequestContent
	Info      *Info
	Reason    *Reason
}

// RequestContent is one content entry within a request.
type RequestContent struct {
	Creator     SessionRole
	Name        string
	Senders     ContentSenders
	Disposition string
	Application ApplicationDescription
	Transport   TransportDescription
}

// SessionStats is a point-in-time snapshot of a session and its contents.
type SessionStats struct {
	State    SessionState
	Contents []ContentStats
}

// ContentStats is the snapshot of one content. Application and Transport
// carry whatever the respective plugins report.
type ContentStats struct {
	Creator     SessionRole
	Name        string
	Senders     ContentSenders
	State       ContentState
	Direction   ContentDirection
	Application any
	Transport   any
}
