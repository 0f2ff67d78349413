package jingle

import "bytes"

// Ack is the outcome code returned for every processed request.
type Ack int

const (
	// AckOk acknowledges success.
	AckOk Ack = iota
	// AckBadRequest rejects a request that is structurally or semantically
	// invalid for the current state.
	AckBadRequest
	// AckOutOfOrder rejects a well-formed action that is illegal in the
	// current state, e.g. a premature session-accept.
	AckOutOfOrder
	// AckTieBreak rejects the losing side of simultaneous conflicting
	// proposals.
	AckTieBreak
	// AckUnknownSession rejects a request whose sid matches no session and
	// whose action cannot open one.
	AckUnknownSession
)

var ackNames = map[Ack]string{
	AckOk:             "ok",
	AckBadRequest:     "bad-request",
	AckOutOfOrder:     "out-of-order",
	AckTieBreak:       "tie-break",
	AckUnknownSession: "unknown-session",
}

func (a Ack) String() string {
	if name, ok := ackNames[a]; ok {
		return name
	}
	return "invalid-ack"
}

// ReduceAcks combines per-content validation acks into one session-level
// ack. Precedence, most severe first: BadRequest, TieBreak, OutOfOrder, Ok.
// An empty slice reduces to Ok.
func ReduceAcks(acks []Ack) Ack {
	reduced := AckOk
	for _, ack := range acks {
		switch ack {
		case AckBadRequest:
			reduced = AckBadRequest
		case AckTieBreak:
			if reduced != AckBadRequest {
				reduced = AckTieBreak
			}
		case AckOutOfOrder:
			if reduced == AckOk {
				reduced = AckOutOfOrder
			}
		}
	}
	return reduced
}

// OctetCompare orders two strings by the raw bytes of their UTF-8 encoding.
// Both peers of a tie-break must compute the same winner, so the comparison
// is never locale-aware.
func OctetCompare(a, b string) int {
	return bytes.Compare([]byte(a), []byte(b))
}
