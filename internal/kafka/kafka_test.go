package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Domenick1991/parkingblisko/internal/domain"
	"github.com/Domenick1991/parkingblisko/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	event := ReservationEvent{
		Type:   EventReservationAdded,
		ID:     "0b7c5e0e-7a53-4a4e-8f4c-9d2f3b1f6a10",
		Source: "parkingblisko",
		Date:   domain.Date{Year: 2025, Month: time.May, Day: 14},
		Reservation: domain.Reservation{
			PickupTime: "03:00",
			PersonName: "Oleksandr Yankov",
		},
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	decoded, ok := decodeEvent(data)
	require.True(t, ok)
	assert.Equal(t, event.Type, decoded.Type)
	assert.Equal(t, event.Date, decoded.Date)
	assert.Equal(t, "Oleksandr Yankov", decoded.Reservation.PersonName)

	_, ok = decodeEvent([]byte("not json"))
	assert.False(t, ok)
	_, ok = decodeEvent([]byte(`{"id":"x"}`))
	assert.False(t, ok)
}

func TestNewProducer_CloseNilConsumer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, logger.Nop())
	assert.NotNil(t, p)
	assert.NoError(t, p.Close())

	var nilConsumer *Consumer
	assert.NoError(t, nilConsumer.Close())
}
