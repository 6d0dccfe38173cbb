package broadcast_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandip/drivesim/internal/broadcast"
	"github.com/wandip/drivesim/internal/packet"
	"github.com/wandip/drivesim/pkg/models"
)

func TestPublishWithoutSubscribersIsANoop(t *testing.T) {
	t.Parallel()

	publisher, err := broadcast.NewPublisher("127.0.0.1:0", zerolog.Nop())
	require.NoError(t, err)

	defer publisher.Close()

	assert.Equal(t, 0, publisher.Subscribers())
	assert.NoError(t, publisher.Publish(packet.Packet{Frame: 1}))
}

func TestReceiverGetsPublishedPackets(t *testing.T) {
	t.Parallel()

	publisher, err := broadcast.NewPublisher("127.0.0.1:0", zerolog.Nop())
	require.NoError(t, err)

	defer publisher.Close()

	receiver, err := broadcast.NewReceiver(broadcast.ReceiverConfig{
		Host:       "127.0.0.1",
		Port:       publisher.Port(),
		ListenAddr: "127.0.0.1:0",
	}, zerolog.Nop())
	require.NoError(t, err)

	defer receiver.Close()

	require.Eventually(t, func() bool {
		return publisher.Subscribers() == 1
	}, 2*time.Second, 10*time.Millisecond)

	sent := packet.Packet{
		Frame:       7,
		Ready:       true,
		Speed:       models.Of(3.5),
		EngineForce: models.Of(600),
	}

	require.NoError(t, publisher.Publish(sent))

	got, err := receiver.Read()
	require.NoError(t, err)

	assert.Equal(t, uint32(7), got.Frame)
	assert.True(t, got.Ready)
	assert.Equal(t, models.Of(3.5), got.Speed)
	assert.Equal(t, models.Of(600), got.EngineForce)
	assert.False(t, got.Position.X.Valid())
}

func TestPublishAfterCloseFails(t *testing.T) {
	t.Parallel()

	publisher, err := broadcast.NewPublisher("127.0.0.1:0", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, publisher.Close())
	require.NoError(t, publisher.Close())

	assert.ErrorIs(t, publisher.Publish(packet.Packet{}), broadcast.ErrPublisherClosed)
}
