package schedule

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Domenick1991/parkingblisko/internal/domain"
)

// ErrMisuse marks calls that reference days or positions the schedule does not have.
var ErrMisuse = errors.New("schedule misuse")

var (
	ErrDayNotFound     = fmt.Errorf("%w: day not found", ErrMisuse)
	ErrIndexOutOfRange = fmt.Errorf("%w: reservation index out of range", ErrMisuse)
)

// Store is the in-memory schedule: day buckets ordered by date, each holding
// reservations ordered by pickup time.
type Store struct {
	mu       sync.Mutex
	days     []*DayBucket
	holidays HolidayTable
}

func NewStore(holidays HolidayTable) *Store {
	if holidays == nil {
		holidays = DefaultHolidays()
	}
	return &Store{holidays: holidays}
}

// SetHolidays replaces the label table. Existing buckets keep their labels.
func (s *Store) SetHolidays(holidays HolidayTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays = holidays
}

// Insert adds r to the bucket for date, creating the bucket when needed.
// It returns the position r ended up at within the bucket.
func (s *Store) Insert(r domain.Reservation, date domain.Date) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.search(date)
	if i == len(s.days) || s.days[i].Date != date {
		bucket := &DayBucket{Date: date, Label: s.holidays.Label(date)}
		s.days = append(s.days, nil)
		copy(s.days[i+1:], s.days[i:])
		s.days[i] = bucket
	}

	bucket := s.days[i]
	bucket.Reservations = append(bucket.Reservations, r.Clone())
	sort.SliceStable(bucket.Reservations, func(a, b int) bool {
		return bucket.Reservations[a].PickupTime < bucket.Reservations[b].PickupTime
	})

	// equal pickup times keep insertion order, so the new record is the last of its time
	pos := 0
	for j, existing := range bucket.Reservations {
		if existing.PickupTime <= r.PickupTime {
			pos = j
		}
	}
	return pos
}

// Remove deletes the reservation at index from the bucket for date and drops
// the bucket once it is empty.
func (s *Store) Remove(date domain.Date, index int) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.search(date)
	if i == len(s.days) || s.days[i].Date != date {
		return domain.Reservation{}, fmt.Errorf("%w: %s", ErrDayNotFound, date)
	}
	bucket := s.days[i]
	if index < 0 || index >= len(bucket.Reservations) {
		return domain.Reservation{}, fmt.Errorf("%w: %d of %d on %s", ErrIndexOutOfRange, index, len(bucket.Reservations), date)
	}

	removed := bucket.Reservations[index]
	bucket.Reservations = append(bucket.Reservations[:index], bucket.Reservations[index+1:]...)
	if len(bucket.Reservations) == 0 {
		s.days = append(s.days[:i], s.days[i+1:]...)
	}
	return removed, nil
}

// Days returns a copy of every bucket in date order.
func (s *Store) Days() []DayBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DayBucket, len(s.days))
	for i, d := range s.days {
		out[i] = d.clone()
	}
	return out
}

func (s *Store) Day(date domain.Date) (DayBucket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.search(date)
	if i == len(s.days) || s.days[i].Date != date {
		return DayBucket{}, false
	}
	return s.days[i].clone(), true
}

// Len returns the total number of scheduled reservations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, d := range s.days {
		n += len(d.Reservations)
	}
	return n
}

// GroupedView splits the days into those with at most threshold departures and the rest.
type GroupedView struct {
	Threshold int         `json:"threshold"`
	Small     []DayBucket `json:"small"`
	Large     []DayBucket `json:"large"`
}

func (s *Store) Grouped(threshold int) GroupedView {
	view := GroupedView{Threshold: threshold, Small: []DayBucket{}, Large: []DayBucket{}}
	for _, d := range s.Days() {
		if len(d.Reservations) <= threshold {
			view.Small = append(view.Small, d)
		} else {
			view.Large = append(view.Large, d)
		}
	}
	return view
}

// search returns the index of the first bucket not before date. Callers hold mu.
func (s *Store) search(date domain.Date) int {
	return sort.Search(len(s.days), func(i int) bool {
		return !s.days[i].Date.Before(date)
	})
}
