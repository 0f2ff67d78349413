package jingle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduceAcks(t *testing.T) {
	cases := []struct {
		name string
		acks []Ack
		want Ack
	}{
		{"empty", nil, AckOk},
		{"all ok", []Ack{AckOk, AckOk}, AckOk},
		{"out-of-order beats ok", []Ack{AckOk, AckOutOfOrder, AckOk}, AckOutOfOrder},
		{"tie-break beats out-of-order", []Ack{AckOutOfOrder, AckTieBreak}, AckTieBreak},
		{"bad-request beats everything", []Ack{AckTieBreak, AckBadRequest, AckOutOfOrder}, AckBadRequest},
		{"order does not matter", []Ack{AckBadRequest, AckOk}, AckBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ReduceAcks(tc.acks))
		})
	}
}

func TestOctetCompare(t *testing.T) {
	assert.Equal(t, 0, OctetCompare("abc", "abc"))
	assert.Equal(t, -1, OctetCompare("abc", "abd"))
	assert.Equal(t, 1, OctetCompare("b", "a"))
	// shorter strings sort first when they are a prefix
	assert.Equal(t, -1, OctetCompare("ab", "abc"))
	// comparison is on raw bytes, not code point semantics
	assert.Equal(t, -1, OctetCompare("Z", "a"))
	assert.Equal(t, 1, OctetCompare("é", "e"))
}
