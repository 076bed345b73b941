package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/events"
	"venuedesk/internal/core/id"
	"venuedesk/internal/infrastructure/storage/postgres"
)

func outboxMessage() *postgres.OutboxMessage {
	return &postgres.OutboxMessage{
		ID:            id.New(),
		AggregateType: events.AggregateInvoice,
		AggregateID:   id.New(),
		EventType:     events.InvoiceRevised,
		Payload:       []byte(`{"voucherNum":"INV-2026-00001"}`),
		CreatedAt:     time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestProducer_Handle(t *testing.T) {
	t.Run("sends to the aggregate topic", func(t *testing.T) {
		msg := outboxMessage()
		mock := mocks.NewSyncProducer(t, nil)
		mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
			assert.Equal(t, DefaultTopic, m.Topic)
			key, _ := m.Key.Encode()
			assert.Equal(t, msg.AggregateID.String(), string(key))
			value, _ := m.Value.Encode()
			assert.JSONEq(t, string(msg.Payload), string(value))
			require.Len(t, m.Headers, 4)
			assert.Equal(t, "event_type", string(m.Headers[1].Key))
			assert.Equal(t, events.InvoiceRevised, string(m.Headers[1].Value))
			return nil
		})

		p := NewProducerFrom(mock, "")
		require.NoError(t, p.Handle(context.Background(), msg))
		require.NoError(t, p.Close())
	})

	t.Run("broker failure is returned", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, nil)
		mock.ExpectSendMessageAndFail(errors.New("leader not available"))

		p := NewProducerFrom(mock, "venuedesk")
		err := p.Handle(context.Background(), outboxMessage())
		assert.ErrorContains(t, err, "send invoice.revised")
		require.NoError(t, p.Close())
	})

	t.Run("canceled context skips delivery", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := NewProducerFrom(mocks.NewSyncProducer(t, nil), "")
		assert.ErrorIs(t, p.Handle(ctx, outboxMessage()), context.Canceled)
		require.NoError(t, p.Close())
	})
}

func TestNewProducerFrom_Topic(t *testing.T) {
	assert.Equal(t, DefaultTopic, NewProducerFrom(nil, "").topic)
	assert.Equal(t, "staging.events", NewProducerFrom(nil, "staging.events").topic)
}
