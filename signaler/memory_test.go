package signaler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latentflip/jingle/base/log"
	"github.com/latentflip/jingle/jingle"
)

// recordingProcessor stands in for a manager on the receiving side.
type recordingProcessor struct {
	requests []jingle.Request
	peers    []string
	ack      jingle.Ack
}

func (p *recordingProcessor) ProcessRequest(_ context.Context, request jingle.Request, peer, _ string) (jingle.Ack, error) {
	p.requests = append(p.requests, request)
	p.peers = append(p.peers, peer)
	return p.ack, nil
}

func TestMemoryDeliversBetweenEndpoints(t *testing.T) {
	fabric := NewMemory(log.Fields{})

	receiver := &recordingProcessor{ack: jingle.AckOk}
	fabric.Endpoint("juliet@example.com").UseSessionManager(receiver)
	sender := fabric.Endpoint("romeo@example.com")

	request := jingle.Request{Action: jingle.SessionInitiate, SID: "sid-1"}
	ack, err := sender.Signal(context.Background(), "juliet@example.com", "romeo@example.com", request)
	require.NoError(t, err)
	assert.Equal(t, jingle.AckOk, ack)

	require.Len(t, receiver.requests, 1)
	assert.Equal(t, "sid-1", receiver.requests[0].SID)
	assert.Equal(t, []string{"romeo@example.com"}, receiver.peers)
}

func TestMemoryPropagatesRemoteAck(t *testing.T) {
	fabric := NewMemory(log.Fields{})
	fabric.Endpoint("juliet@example.com").UseSessionManager(&recordingProcessor{ack: jingle.AckTieBreak})

	ack, err := fabric.Endpoint("romeo@example.com").
		Signal(context.Background(), "juliet@example.com", "romeo@example.com", jingle.Request{Action: jingle.SessionInitiate})
	require.NoError(t, err)
	assert.Equal(t, jingle.AckTieBreak, ack)
}

func TestMemoryRejectsUnknownTarget(t *testing.T) {
	fabric := NewMemory(log.Fields{})

	_, err := fabric.Endpoint("romeo@example.com").
		Signal(context.Background(), "nobody@example.com", "romeo@example.com", jingle.Request{Action: jingle.SessionInfo})
	assert.Error(t, err)
}
