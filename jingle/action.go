package jingle

// Action is a protocol action carried by a negotiation request.
// The set is closed; values match the wire names.
type Action string

const (
	ContentAccept    Action = "content-accept"
	ContentAdd       Action = "content-add"
	ContentModify    Action = "content-modify"
	ContentReject    Action = "content-reject"
	ContentRemove    Action = "content-remove"
	DescriptionInfo  Action = "description-info"
	SessionAccept    Action = "session-accept"
	SessionInfo      Action = "session-info"
	SessionInitiate  Action = "session-initiate"
	SessionTerminate Action = "session-terminate"
	TransportAccept  Action = "transport-accept"
	TransportInfo    Action = "transport-info"
	TransportReject  Action = "transport-reject"
	TransportReplace Action = "transport-replace"
)

func (a Action) String() string {
	return string(a)
}

// ContentAction maps a session-level action to the per-content action it
// implies. Actions that already target contents map to themselves.
func (a Action) ContentAction() Action {
	switch a {
	case SessionInitiate:
		return ContentAdd
	case SessionAccept:
		return ContentAccept
	case SessionTerminate:
		return ContentRemove
	default:
		return a
	}
}

// RequiresContent reports whether a request carrying this action must name
// at least one content.
func (a Action) RequiresContent() bool {
	switch a {
	case SessionTerminate, SessionInfo, DescriptionInfo, TransportInfo:
		return false
	default:
		return true
	}
}
