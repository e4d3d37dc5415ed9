package submission

import (
	"context"

	"github.com/Domenick1991/parkingblisko/internal/kafka"
	"github.com/Domenick1991/parkingblisko/internal/logger"
)

type Submitter interface {
	Submit(ctx context.Context, p Payload) error
}

// Forwarder hands reservation events from the queue to the reservation API.
type Forwarder struct {
	submitter Submitter
	log       logger.Logger
}

func NewForwarder(submitter Submitter, log logger.Logger) *Forwarder {
	return &Forwarder{submitter: submitter, log: log}
}

// Handle submits added reservations. A rejected submission is logged and the
// event is dropped so the consumer keeps going; only a canceled ctx stops it.
func (f *Forwarder) Handle(ctx context.Context, event kafka.ReservationEvent) error {
	switch event.Type {
	case kafka.EventReservationAdded:
		err := f.submitter.Submit(ctx, Payload{
			ID:          event.ID,
			Source:      event.Source,
			Date:        event.Date,
			Reservation: event.Reservation,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Error("reservation submission failed", "id", event.ID, "date", event.Date.String(), "error", err)
		}
	case kafka.EventReservationRemoved:
		f.log.Info("reservation removed from schedule", "id", event.ID, "date", event.Date.String(), "person", event.Reservation.PersonName)
	default:
		f.log.Warn("unknown reservation event", "type", event.Type, "id", event.ID)
	}
	return nil
}

var _ Submitter = (*Client)(nil)
