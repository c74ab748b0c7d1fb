package source

import (
	"context"
	"strings"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"minorityScope/internal/model"
)

func TestStreamReader(t *testing.T) {
	input := strings.Join([]string{
		`{"chain_id":56,"block_number":1,"tx_hash":"0x1","log_index":0,"event_name":"PoolCreated","fields":{"poolId":"1"}}`,
		``,
		`{"chain_id":56,"block_number":2,"tx_hash":"0x2","log_index":3,"event_name":"PlayerJoined","fields":{"poolId":"1"}}`,
	}, "\n")

	out := make(chan Delivery, 4)
	require.NoError(t, StreamReader(context.Background(), strings.NewReader(input), out))
	close(out)

	var got []model.GameEvent
	for d := range out {
		require.NoError(t, d.Ack())
		got = append(got, d.Event)
	}
	require.Len(t, got, 2)
	require.Equal(t, "PlayerJoined", got[1].EventName)
	require.Equal(t, uint64(3), got[1].LogIndex)
}

func TestStreamReaderRejectsBadLine(t *testing.T) {
	out := make(chan Delivery, 1)
	err := StreamReader(context.Background(), strings.NewReader("{not json}\n"), out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 1")
}

func TestSliceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Slice{{EventName: "PoolCreated"}}.Stream(ctx, make(chan Delivery))
	require.ErrorIs(t, err, context.Canceled)
}

func TestJetStreamSubject(t *testing.T) {
	ev := model.GameEvent{ChainID: 8453, EventName: "RoundResolved"}
	require.Equal(t, "games.8453.RoundResolved", JetStreamConfig{}.Subject(ev))
	require.Equal(t, "minority.8453.RoundResolved", JetStreamConfig{SubjectPrefix: "minority"}.Subject(ev))
}

func TestJetStreamConsumerKeepsOneMessageInFlight(t *testing.T) {
	cfg := JetStreamConfig{Consumer: "indexer", MaxDeliver: 5}.consumerConfig()
	require.Equal(t, 1, cfg.MaxAckPending)
	require.Equal(t, jetstream.AckExplicitPolicy, cfg.AckPolicy)
	require.Equal(t, "games.>", cfg.FilterSubject)

	cfg = JetStreamConfig{Consumer: "indexer", MaxAckPending: 8}.consumerConfig()
	require.Equal(t, 8, cfg.MaxAckPending)
}
