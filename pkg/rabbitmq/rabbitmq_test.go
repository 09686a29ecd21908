package rabbitmq

import (
	"fmt"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordingAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestHandleDelivery(t *testing.T) {
	tests := []struct {
		name        string
		handlerErr  error
		redelivered bool
		wantAck     bool
		wantRequeue bool
	}{
		{name: "success is acked", handlerErr: nil, wantAck: true},
		{name: "redelivered success is acked", handlerErr: nil, redelivered: true, wantAck: true},
		{name: "discard is dropped", handlerErr: fmt.Errorf("bad payload: %w", ErrDiscard)},
		{name: "first failure is requeued", handlerErr: fmt.Errorf("smtp down"), wantRequeue: true},
		{name: "repeated failure is dropped", handlerErr: fmt.Errorf("smtp down"), redelivered: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAcknowledger{}
			c := &Client{logger: zap.NewNop()}

			var gotKey string
			var gotBody []byte
			c.handleDelivery(amqp.Delivery{
				Acknowledger: ack,
				DeliveryTag:  1,
				Redelivered:  tt.redelivered,
				RoutingKey:   "order.created",
				Body:         []byte(`{"orderId":"1"}`),
			}, func(routingKey string, body []byte) error {
				gotKey, gotBody = routingKey, body
				return tt.handlerErr
			})

			assert.Equal(t, "order.created", gotKey)
			assert.JSONEq(t, `{"orderId":"1"}`, string(gotBody))
			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, !tt.wantAck, ack.nacked)
			assert.Equal(t, tt.wantRequeue, ack.requeue)
		})
	}
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{logger: zap.NewNop()}
	assert.Error(t, c.Publish("order.created", []byte(`{}`)))
}
