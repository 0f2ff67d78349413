package jingle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentAction(t *testing.T) {
	assert.Equal(t, ContentAdd, SessionInitiate.ContentAction())
	assert.Equal(t, ContentAccept, SessionAccept.ContentAction())
	assert.Equal(t, ContentRemove, SessionTerminate.ContentAction())

	for _, action := range []Action{
		ContentAccept, ContentAdd, ContentModify, ContentReject, ContentRemove,
		DescriptionInfo, SessionInfo, TransportAccept, TransportInfo,
		TransportReject, TransportReplace,
	} {
		assert.Equal(t, action, action.ContentAction(), "action %s should map to itself", action)
	}
}

func TestRequiresContent(t *testing.T) {
	noContent := []Action{SessionTerminate, SessionInfo, DescriptionInfo, TransportInfo}
	for _, action := range noContent {
		assert.False(t, action.RequiresContent(), "action %s", action)
	}

	withContent := []Action{
		ContentAccept, ContentAdd, ContentModify, ContentReject, ContentRemove,
		SessionAccept, SessionInitiate, TransportAccept, TransportReject,
		TransportReplace,
	}
	for _, action := range withContent {
		assert.True(t, action.RequiresContent(), "action %s", action)
	}
}
