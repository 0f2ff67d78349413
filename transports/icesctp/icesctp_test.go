package icesctp

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latentflip/jingle/jingle"
)

type foreignDescription struct{}

func (foreignDescription) TransportType() string { return "foreign" }

func TestFactoryRejectsForeignDescriptions(t *testing.T) {
	assert.Nil(t, Factory(foreignDescription{}))
}

func TestOfferAnswerRoundTrip(t *testing.T) {
	ctx := context.Background()

	offerer, err := New()
	require.NoError(t, err)
	defer offerer.End()
	require.NoError(t, offerer.OpenStreamChannel(ctx))

	offer, err := offerer.CreateOffer(ctx)
	require.NoError(t, err)
	assert.Equal(t, Namespace, offer.TransportType())
	od, ok := offer.(Description)
	require.True(t, ok)
	assert.True(t, strings.Contains(od.SDP, "v=0"), "offer should be SDP")

	answerer := Factory(offer)
	require.NotNil(t, answerer)
	defer answerer.End()
	require.NoError(t, answerer.ApplyOffer(ctx, offer))

	answer, err := answerer.CreateAnswer(ctx)
	require.NoError(t, err)
	require.NoError(t, offerer.ApplyAnswer(ctx, answer))
}

func TestApplyOfferRejectsForeignDescription(t *testing.T) {
	transport, err := New()
	require.NoError(t, err)
	defer transport.End()

	err = transport.ApplyOffer(context.Background(), foreignDescription{})
	assert.ErrorIs(t, err, jingle.ErrUnsupportedDescription)
}

func TestChannelsArePreNegotiated(t *testing.T) {
	transport, err := New()
	require.NoError(t, err)
	defer transport.End()

	ctx := context.Background()
	require.NoError(t, transport.OpenStreamChannel(ctx))
	require.NoError(t, transport.OpenDatagramChannel(ctx))
}

func TestInband(t *testing.T) {
	transport, err := New()
	require.NoError(t, err)
	defer transport.End()
	assert.True(t, transport.Inband())
}
