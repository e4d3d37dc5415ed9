package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/parkingblisko/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBlock = "[12] Ford Mondeo OKL39353 12x zapłacone\n4 maja 2025, 00:15–14 maja 2025, 03:00\nOleksandr Yankov 886 383 154\nAntalia 4M873"

func newTestParser() *Parser {
	return New(WithLocation(time.UTC))
}

func TestParse_FullBlock(t *testing.T) {
	res, err := newTestParser().Parse(sampleBlock)
	require.NoError(t, err)

	r := res.Reservation
	assert.Equal(t, "12", r.GarageSlot)
	assert.True(t, r.UsesGarage)
	assert.Equal(t, "Ford", r.VehicleBrand)
	assert.Equal(t, "Mondeo", r.VehicleModel)
	assert.Equal(t, "OKL39353", r.VehiclePlate)
	assert.Equal(t, "Ford Mondeo OKL39353", r.VehicleDescriptor)
	assert.Equal(t, 12, r.DayCount)
	assert.True(t, r.IsPaid)
	assert.Nil(t, r.AmountDue)
	assert.Equal(t, "Oleksandr Yankov", r.PersonName)
	assert.Equal(t, "886383154", r.Phone)
	assert.Equal(t, domain.TimeOfDay("03:00"), r.PickupTime)
	assert.Equal(t, "Antalia 4M873", r.FlightInfo)
	assert.Equal(t, domain.Date{Year: 2025, Month: time.May, Day: 14}, res.Date)
	require.NotNil(t, r.Arrival)
	assert.Equal(t, time.Date(2025, time.May, 4, 0, 15, 0, 0, time.UTC), *r.Arrival)
	assert.Empty(t, r.InternalNote)
	assert.Empty(t, r.PublicNote)
	assert.NoError(t, r.Validate())
	assert.NotEmpty(t, res.Trace)
}

func TestParse_IsDeterministic(t *testing.T) {
	p := newTestParser()
	first, err := p.Parse(sampleBlock)
	require.NoError(t, err)
	second, err := p.Parse(sampleBlock)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParse_TooShort(t *testing.T) {
	for _, text := range []string{
		"",
		"   \n\n",
		"Ford Focus WA1\n\n4 maja 2025, 10:00\n   ",
	} {
		_, err := newTestParser().Parse(text)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), text)
		assert.Equal(t, ReasonTooShort, perr.Reason)
		assert.NotEmpty(t, perr.Trace)
	}
}

func TestParse_NoArrivalDate(t *testing.T) {
	_, err := newTestParser().Parse("Ford Focus WA1\njutro rano\nJan Kowalski 600 700 800\nRzym")

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ReasonNoArrivalDate, perr.Reason)
	assert.Contains(t, perr.Message, "jutro rano")
	assert.Contains(t, perr.Trace[len(perr.Trace)-1], "failed")
}

func TestParse_SingleDateSynthesizesDeparture(t *testing.T) {
	res, err := newTestParser().Parse("Opel Corsa WE12345 5x DZ\n30 kwietnia 2025, 18:40\nAnna Nowak 501 502 503\nOslo DY1234")
	require.NoError(t, err)

	r := res.Reservation
	assert.Equal(t, domain.Date{Year: 2025, Month: time.May, Day: 5}, res.Date)
	assert.Equal(t, domain.TimeOfDay("18:40"), r.PickupTime)
	assert.Equal(t, 5, r.DayCount)
	assert.False(t, r.IsPaid)
	assert.Nil(t, r.AmountDue)
	assert.Error(t, r.Validate())
}

func TestParse_SingleDateGluedDayCount(t *testing.T) {
	res, err := newTestParser().Parse("Opel Corsa WE1 5xDo zapłaty 100\n30 kwietnia 2025, 18:40\nAnna Nowak 501 502 503\nOslo DY1234")
	require.NoError(t, err)

	assert.Equal(t, 5, res.Reservation.DayCount)
	assert.Equal(t, domain.Date{Year: 2025, Month: time.May, Day: 5}, res.Date)
	assert.Equal(t, "Opel Corsa WE1", res.Reservation.VehicleDescriptor)
}

func TestParse_SingleDateDefaultDayCount(t *testing.T) {
	res, err := New(WithLocation(time.UTC), WithDefaultDayCount(4)).Parse("Opel Corsa WE12345\n30 kwietnia 2025, 18:40\nAnna Nowak 501 502 503\nOslo")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Reservation.DayCount)
	assert.Equal(t, domain.Date{Year: 2025, Month: time.May, Day: 4}, res.Date)
}

func TestParse_DerivedDayCount(t *testing.T) {
	res, err := newTestParser().Parse("Opel Corsa WE12345\n1 czerwca 2025, 10:00–8 czerwca 2025, 09:00\nAnna Nowak 501 502 503\nOslo")
	require.NoError(t, err)
	assert.Equal(t, 7, res.Reservation.DayCount)
}

func TestParse_NameWithoutPhone(t *testing.T) {
	res, err := newTestParser().Parse("Kia Rio KR1\n1 czerwca 2025, 10:00–8 czerwca 2025, 09:00\nJan Kowalski\nRzym FR1234\nTerminal 1")
	require.NoError(t, err)
	assert.Equal(t, "Jan Kowalski", res.Reservation.PersonName)
	assert.Empty(t, res.Reservation.Phone)
	assert.Equal(t, "Rzym FR1234 Terminal 1", res.Reservation.FlightInfo)
}

func TestParse_KeywordsNotesAndInvoice(t *testing.T) {
	text := "Toyota Yaris WX12345 klucze ładowarki Do zapłaty 120\n" +
		"2 sierpnia 2025, 05:00–9 sierpnia 2025, 23:10\n" +
		"Lot Kreta LO123\n" +
		"Piotr Wiśniewski +48 601 602 603\n" +
		"Faktura NIP 5213000001 piotr@example.com"

	res, err := newTestParser().Parse(text)
	require.NoError(t, err)

	r := res.Reservation
	assert.Equal(t, "klucze, ładowarki", r.PublicNote)
	assert.Equal(t, []domain.ServiceFlag{domain.ServiceLeftKey, domain.ServiceHasCharger}, r.ServiceFlags)
	assert.Equal(t, "Toyota", r.VehicleBrand)
	assert.Equal(t, "Yaris", r.VehicleModel)
	assert.Equal(t, "WX12345", r.VehiclePlate)
	assert.False(t, r.IsPaid)
	require.NotNil(t, r.AmountDue)
	assert.Equal(t, 120.0, *r.AmountDue)
	assert.Equal(t, "Piotr Wiśniewski", r.PersonName)
	assert.Equal(t, "+48601602603", r.Phone)
	assert.Equal(t, "piotr@example.com", r.Email)
	assert.Equal(t, "Lot Kreta LO123 Faktura NIP 5213000001 piotr@example.com", r.FlightInfo)
	assert.Equal(t, "NIP 5213000001; faktura", r.InternalNote)
	assert.Equal(t, domain.TimeOfDay("23:10"), r.PickupTime)
	assert.NoError(t, r.Validate())
}

func TestParse_WindowsLineEndingsAndBlankLines(t *testing.T) {
	text := "\r\n[3] Ford Focus WA1 zapłacone\r\n\r\n4 maja 2025, 00:15–14 maja 2025, 03:00\r\nJan Nowak 600 700 800\r\n\r\nRzym\r\n"
	res, err := newTestParser().Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "3", res.Reservation.GarageSlot)
	assert.Equal(t, "Rzym", res.Reservation.FlightInfo)
}

func TestParseError_Error(t *testing.T) {
	err := &ParseError{Reason: ReasonTooShort, Message: "at least 3 lines are required, got 2"}
	assert.Equal(t, "too_short: at least 3 lines are required, got 2", err.Error())
}
