package manager

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latentflip/jingle/base/log"
	"github.com/latentflip/jingle/jingle"
	"github.com/latentflip/jingle/session"
	"github.com/latentflip/jingle/testutils"
)

const (
	gridPeer = "peer@example.com"
	gridMe   = "me@example.com"
)

var allSessionStates = []jingle.SessionState{
	jingle.SessionStarting,
	jingle.SessionUnacked,
	jingle.SessionPending,
	jingle.SessionActive,
	jingle.SessionEnded,
}

var allContentStates = []jingle.ContentState{
	jingle.ContentStarting,
	jingle.ContentUnacked,
	jingle.ContentPending,
	jingle.ContentActive,
	jingle.ContentRejected,
	jingle.ContentRemoved,
}

// prepareGridSession builds a manager holding one initiator session with
// one content named "test", then parks both in the requested states.
func prepareGridSession(t *testing.T, sessionState jingle.SessionState, contentState jingle.ContentState) (*Manager, *session.Session) {
	t.Helper()
	m := New(log.Fields{})
	t.Cleanup(m.Shutdown)
	m.RegisterApplicationType(testutils.StubType, testutils.StubApplicationFactory)
	m.RegisterTransportType(testutils.StubType, testutils.StubTransportFactory)

	s := m.CreateSession(gridPeer, gridMe)
	content := s.CreateContent(session.ContentOptions{
		Name:        "test",
		Application: testutils.NewStubApplication(),
		Transport:   testutils.NewStubTransport(),
	})
	ctx := context.Background()
	_, err := content.Start(ctx)
	require.NoError(t, err)

	s.SetState(sessionState)
	content.SetState(contentState)
	return m, s
}

// deliver injects a remote request against the grid session's content.
func deliver(t *testing.T, m *Manager, s *session.Session, action jingle.Action, creator jingle.SessionRole) jingle.Ack {
	t.Helper()
	ack, err := m.ProcessRequest(context.Background(), jingle.Request{
		Action: action,
		SID:    s.SID(),
		Contents: []jingle.RequestContent{{
			Creator:     creator,
			Name:        "test",
			Application: testutils.NewStubDescription(),
			Transport:   testutils.NewStubDescription(),
		}},
	}, gridPeer, gridMe)
	require.NoError(t, err)
	return ack
}

// forwardedGrid checks one remote content action against every session
// and content state combination. expected maps content states to acks
// for the forwarded (pending or active) session states; unestablished
// sessions always answer UnknownSession.
func forwardedGrid(t *testing.T, action jingle.Action, creator jingle.SessionRole, expected map[jingle.ContentState]jingle.Ack) {
	t.Helper()
	for _, sessionState := range allSessionStates {
		forwarded := sessionState == jingle.SessionPending || sessionState == jingle.SessionActive
		for _, contentState := range allContentStates {
			name := fmt.Sprintf("session=%s/content=%s", sessionState, contentState)
			t.Run(name, func(t *testing.T) {
				m, s := prepareGridSession(t, sessionState, contentState)
				want := jingle.AckUnknownSession
				if forwarded {
					want = expected[contentState]
				}
				assert.Equal(t, want, deliver(t, m, s, action, creator))
			})
		}
	}
}

func TestRemoteContentAcceptStates(t *testing.T) {
	forwardedGrid(t, jingle.ContentAccept, jingle.RoleInitiator, map[jingle.ContentState]jingle.Ack{
		jingle.ContentStarting: jingle.AckBadRequest,
		jingle.ContentUnacked:  jingle.AckOutOfOrder,
		jingle.ContentPending:  jingle.AckOk,
		jingle.ContentActive:   jingle.AckOutOfOrder,
		jingle.ContentRejected: jingle.AckBadRequest,
		jingle.ContentRemoved:  jingle.AckBadRequest,
	})
}

func TestRemoteContentRejectStates(t *testing.T) {
	forwardedGrid(t, jingle.ContentReject, jingle.RoleInitiator, map[jingle.ContentState]jingle.Ack{
		jingle.ContentStarting: jingle.AckBadRequest,
		jingle.ContentUnacked:  jingle.AckOutOfOrder,
		jingle.ContentPending:  jingle.AckOk,
		jingle.ContentActive:   jingle.AckOutOfOrder,
		jingle.ContentRejected: jingle.AckBadRequest,
		jingle.ContentRemoved:  jingle.AckBadRequest,
	})
}

func TestRemoteContentRemoveStates(t *testing.T) {
	forwardedGrid(t, jingle.ContentRemove, jingle.RoleInitiator, map[jingle.ContentState]jingle.Ack{
		jingle.ContentStarting: jingle.AckBadRequest,
		jingle.ContentUnacked:  jingle.AckOutOfOrder,
		jingle.ContentPending:  jingle.AckOk,
		jingle.ContentActive:   jingle.AckOk,
		jingle.ContentRejected: jingle.AckBadRequest,
		jingle.ContentRemoved:  jingle.AckBadRequest,
	})
}

func TestRemoteContentModifyStates(t *testing.T) {
	forwardedGrid(t, jingle.ContentModify, jingle.RoleInitiator, map[jingle.ContentState]jingle.Ack{
		jingle.ContentStarting: jingle.AckBadRequest,
		jingle.ContentUnacked:  jingle.AckOutOfOrder,
		jingle.ContentPending:  jingle.AckOk,
		jingle.ContentActive:   jingle.AckOk,
		jingle.ContentRejected: jingle.AckBadRequest,
		jingle.ContentRemoved:  jingle.AckBadRequest,
	})
}

// A content-add naming a content we created collides with our own offer:
// glare while ours is unacknowledged, otherwise an invalid creator.
func TestRemoteContentAddForOwnContentStates(t *testing.T) {
	forwardedGrid(t, jingle.ContentAdd, jingle.RoleInitiator, map[jingle.ContentState]jingle.Ack{
		jingle.ContentStarting: jingle.AckBadRequest,
		jingle.ContentUnacked:  jingle.AckTieBreak,
		jingle.ContentPending:  jingle.AckBadRequest,
		jingle.ContentActive:   jingle.AckBadRequest,
		jingle.ContentRejected: jingle.AckBadRequest,
		jingle.ContentRemoved:  jingle.AckBadRequest,
	})
}

// A peer-created content-add is welcome unless our own equivalent offer
// is still in flight.
func TestRemoteContentAddNewContentStates(t *testing.T) {
	forwardedGrid(t, jingle.ContentAdd, jingle.RoleResponder, map[jingle.ContentState]jingle.Ack{
		jingle.ContentStarting: jingle.AckOk,
		jingle.ContentUnacked:  jingle.AckTieBreak,
		jingle.ContentPending:  jingle.AckOk,
		jingle.ContentActive:   jingle.AckOk,
		jingle.ContentRejected: jingle.AckOk,
		jingle.ContentRemoved:  jingle.AckOk,
	})
}
