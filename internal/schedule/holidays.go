package schedule

import (
	"time"

	"github.com/Domenick1991/parkingblisko/internal/domain"
)

type MonthDay struct {
	Month time.Month
	Day   int
}

// HolidayTable maps a day of the year to the label printed over that day's list.
type HolidayTable map[MonthDay]string

func DefaultHolidays() HolidayTable {
	return HolidayTable{
		{Month: time.April, Day: 28}: "Światowy Dzień Pamięci Ofiar Wypadków przy Pracy",
		{Month: time.April, Day: 29}: "Międzynarodowy Dzień Tańca",
		{Month: time.April, Day: 30}: "Światowy Dzień Sprzeciwu wobec Bicia Dzieci",
	}
}

func (h HolidayTable) Label(d domain.Date) string {
	return h[MonthDay{Month: d.Month, Day: d.Day}]
}

// Merge returns a new table with the entries of other overriding h.
func (h HolidayTable) Merge(other HolidayTable) HolidayTable {
	out := make(HolidayTable, len(h)+len(other))
	for k, v := range h {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
