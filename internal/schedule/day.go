package schedule

import (
	"fmt"
	"time"

	"github.com/Domenick1991/parkingblisko/internal/domain"
)

// DayBucket holds the departures of one calendar day ordered by pickup time.
type DayBucket struct {
	Date         domain.Date          `json:"date"`
	Label        string               `json:"label,omitempty"`
	Reservations []domain.Reservation `json:"reservations"`
}

var weekdayAbbrev = map[time.Weekday]string{
	time.Monday:    "pon.",
	time.Tuesday:   "wt.",
	time.Wednesday: "śr.",
	time.Thursday:  "czw.",
	time.Friday:    "pt.",
	time.Saturday:  "sob.",
	time.Sunday:    "niedz.",
}

// Heading renders the day as it appears on the printed list, e.g. "14.05.2025 (śr.)".
func (b DayBucket) Heading() string {
	return fmt.Sprintf("%02d.%02d.%04d (%s)", b.Date.Day, int(b.Date.Month), b.Date.Year, weekdayAbbrev[b.Date.Weekday()])
}

func (b DayBucket) clone() DayBucket {
	out := b
	out.Reservations = make([]domain.Reservation, len(b.Reservations))
	for i, r := range b.Reservations {
		out.Reservations[i] = r.Clone()
	}
	return out
}
