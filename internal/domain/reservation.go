package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

type ServiceFlag string

const (
	ServiceLeftKey    ServiceFlag = "leftKey"
	ServiceHasCharger ServiceFlag = "hasCharger"
	ServiceSmallCar   ServiceFlag = "smallCar"
	ServiceGeogrid    ServiceFlag = "geogrid"
)

// TimeOfDay is a zero-padded "HH:MM" wall clock time, so string order is time order.
type TimeOfDay string

var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Format("15:04"))
}

func (t TimeOfDay) Valid() bool {
	return timeOfDayRe.MatchString(string(t))
}

type Reservation struct {
	PickupTime        TimeOfDay     `json:"pickup_time"`
	PersonName        string        `json:"person_name"`
	Phone             string        `json:"phone,omitempty"`
	Email             string        `json:"email,omitempty"`
	VehicleDescriptor string        `json:"vehicle_descriptor"`
	VehicleBrand      string        `json:"vehicle_brand"`
	VehicleModel      string        `json:"vehicle_model"`
	VehiclePlate      string        `json:"vehicle_plate"`
	IsPaid            bool          `json:"is_paid"`
	AmountDue         *float64      `json:"amount_due,omitempty"`
	UsesGarage        bool          `json:"uses_garage"`
	GarageSlot        string        `json:"garage_slot,omitempty"`
	FlightInfo        string        `json:"flight_info"`
	PublicNote        string        `json:"public_note"`
	InternalNote      string        `json:"internal_note"`
	ServiceFlags      []ServiceFlag `json:"service_flags"`
	DayCount          int           `json:"day_count"`
	Arrival           *time.Time    `json:"arrival,omitempty"`
	Departure         *time.Time    `json:"departure,omitempty"`
}

func (r Reservation) HasFlag(flag ServiceFlag) bool {
	for _, f := range r.ServiceFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no pointers or slices with r.
func (r Reservation) Clone() Reservation {
	out := r
	if r.AmountDue != nil {
		v := *r.AmountDue
		out.AmountDue = &v
	}
	if r.Arrival != nil {
		v := *r.Arrival
		out.Arrival = &v
	}
	if r.Departure != nil {
		v := *r.Departure
		out.Departure = &v
	}
	if r.ServiceFlags != nil {
		out.ServiceFlags = append([]ServiceFlag(nil), r.ServiceFlags...)
	}
	return out
}

var ErrInvalidReservation = errors.New("invalid reservation")

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidReservation
}

// Validate reports the first missing or inconsistent field that keeps r off the schedule.
func (r Reservation) Validate() error {
	switch {
	case r.PickupTime == "":
		return &ValidationError{Field: "pickup_time", Message: "pickup time is required"}
	case !r.PickupTime.Valid():
		return &ValidationError{Field: "pickup_time", Message: "pickup time must be HH:MM"}
	case r.PersonName == "":
		return &ValidationError{Field: "person_name", Message: "person name is required"}
	case r.VehicleDescriptor == "":
		return &ValidationError{Field: "vehicle_descriptor", Message: "vehicle is required"}
	case r.FlightInfo == "":
		return &ValidationError{Field: "flight_info", Message: "flight info is required"}
	case !r.IsPaid && r.AmountDue == nil:
		return &ValidationError{Field: "amount_due", Message: "amount due is required for unpaid reservations"}
	case r.IsPaid && r.AmountDue != nil:
		return &ValidationError{Field: "amount_due", Message: "paid reservations carry no amount due"}
	case r.DayCount < 0:
		return &ValidationError{Field: "day_count", Message: "day count must not be negative"}
	}
	return nil
}
