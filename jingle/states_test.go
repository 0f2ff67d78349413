package jingle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionFor(t *testing.T) {
	assert.Equal(t, DirectionSend, DirectionFor(SendersInitiator, RoleInitiator))
	assert.Equal(t, DirectionRecv, DirectionFor(SendersInitiator, RoleResponder))
	assert.Equal(t, DirectionRecv, DirectionFor(SendersResponder, RoleInitiator))
	assert.Equal(t, DirectionSend, DirectionFor(SendersResponder, RoleResponder))
	assert.Equal(t, DirectionSendRecv, DirectionFor(SendersBoth, RoleInitiator))
	assert.Equal(t, DirectionSendRecv, DirectionFor(SendersBoth, RoleResponder))
	assert.Equal(t, DirectionNone, DirectionFor(SendersNone, RoleInitiator))
	assert.Equal(t, DirectionNone, DirectionFor(SendersNone, RoleResponder))
	// unspecified senders defaults to both
	assert.Equal(t, DirectionSendRecv, DirectionFor("", RoleInitiator))
}

func TestDirectionForIsSymmetric(t *testing.T) {
	// the two sides of one content must always see mirrored directions
	for _, senders := range []ContentSenders{SendersInitiator, SendersResponder, SendersBoth, SendersNone} {
		for _, role := range []SessionRole{RoleInitiator, RoleResponder} {
			mine := DirectionFor(senders, role)
			theirs := DirectionFor(senders, role.Peer())
			assert.Equal(t, mine, theirs.Swap(), "senders=%s role=%s", senders, role)
		}
	}
}

func TestContentStateLive(t *testing.T) {
	assert.False(t, ContentStarting.Live())
	assert.True(t, ContentUnacked.Live())
	assert.True(t, ContentPending.Live())
	assert.True(t, ContentActive.Live())
	assert.False(t, ContentRejected.Live())
	assert.False(t, ContentRemoved.Live())
}

func TestRolePeer(t *testing.T) {
	assert.Equal(t, RoleResponder, RoleInitiator.Peer())
	assert.Equal(t, RoleInitiator, RoleResponder.Peer())
}
