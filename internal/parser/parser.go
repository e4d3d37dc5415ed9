package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Domenick1991/parkingblisko/internal/domain"
)

// DefaultDayCount is the stay length assumed for single-date blocks without a multiplier.
const DefaultDayCount = 3

// Reason classifies a failed parse.
type Reason string

const (
	ReasonTooShort      Reason = "too_short"
	ReasonNoArrivalDate Reason = "no_arrival_date"
	ReasonInternal      Reason = "internal_error"
)

// ParseError is a failed parse. Trace holds the steps completed before the failure.
type ParseError struct {
	Reason  Reason
	Message string
	Trace   []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Result is a successful parse: the record, the day it is scheduled on and the trace.
type Result struct {
	Reservation domain.Reservation `json:"reservation"`
	// Date is the calendar day of the departure leg, the day the car is scheduled on.
	Date  domain.Date `json:"date"`
	Trace []string    `json:"trace"`
}

type state int

const (
	stateStart state = iota
	stateHeaderParsed
	stateDatesResolved
	stateContactResolved
	stateDone
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateHeaderParsed:
		return "header parsed"
	case stateDatesResolved:
		return "dates resolved"
	case stateContactResolved:
		return "contact resolved"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

var (
	taxIDRe   = regexp.MustCompile(`(?:^|[^\d+])(\d{10})(?:\D|$)`)
	invoiceRe = regexp.MustCompile(`(?i)faktura`)
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// Parser turns reservation text blocks into records. It is safe for concurrent use.
type Parser struct {
	defaultDayCount int
	location        *time.Location
}

// Option configures a Parser.
type Option func(*Parser)

// WithDefaultDayCount sets the stay length used when a single-date block has no multiplier.
func WithDefaultDayCount(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.defaultDayCount = n
		}
	}
}

// WithLocation sets the zone the block's dates are read in.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.location = loc
		}
	}
}

// New returns a Parser with DefaultDayCount and the local zone unless overridden.
func New(opts ...Option) *Parser {
	p := &Parser{defaultDayCount: DefaultDayCount, location: time.Local}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run carries the working state of one Parse call.
type run struct {
	state state
	trace []string
}

func (r *run) logf(format string, args ...interface{}) {
	r.trace = append(r.trace, fmt.Sprintf("[%s] ", r.state)+fmt.Sprintf(format, args...))
}

func (r *run) fail(reason Reason, message string) *ParseError {
	r.logf("failed: %s", message)
	return &ParseError{Reason: reason, Message: message, Trace: r.trace}
}

// Parse turns a pasted reservation block into a reservation scheduled on its
// departure leg. It has no side effects; equal input gives equal output.
func (p *Parser) Parse(text string) (res *Result, err error) {
	r := &run{state: stateStart}
	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, r.fail(ReasonInternal, fmt.Sprintf("unexpected parser failure: %v", rec))
		}
	}()

	lines := nonBlankLines(text)
	r.logf("%d non-blank lines", len(lines))
	if len(lines) < 3 {
		if len(lines) == 0 {
			return nil, r.fail(ReasonTooShort, "no text to parse")
		}
		return nil, r.fail(ReasonTooShort, fmt.Sprintf("at least 3 lines are required, got %d", len(lines)))
	}

	r.logf("header line %q", lines[0])
	header := DecomposeHeader(lines[0])
	for _, frag := range header.Removed {
		r.logf("removed %q", frag)
	}
	r.logf("decomposed: %s", header)
	r.state = stateHeaderParsed

	r.logf("date line %q", lines[1])
	span, strategy, err := ExtractSpan(lines[1], p.location)
	if err != nil {
		return nil, r.fail(ReasonNoArrivalDate, fmt.Sprintf("no arrival date recognized in %q", lines[1]))
	}
	r.logf("matched %s pattern, arrival %s", strategy, span.Arrival.Format("2006-01-02 15:04"))

	dayCount := header.DayCount
	departure := span.Departure
	if departure == nil {
		if dayCount == 0 {
			dayCount = p.defaultDayCount
			r.logf("no day count on header, using default %d", dayCount)
		}
		synthesized := span.Arrival.AddDate(0, 0, dayCount)
		departure = &synthesized
		r.logf("departure synthesized as arrival + %d days: %s", dayCount, synthesized.Format("2006-01-02 15:04"))
	} else {
		r.logf("departure %s", departure.Format("2006-01-02 15:04"))
		if dayCount == 0 {
			dayCount = stayLength(span.Arrival, *departure)
			r.logf("day count derived from dates: %d", dayCount)
		}
	}
	r.state = stateDatesResolved

	rest := append([]string(nil), lines[2:]...)
	contact, found := LocateContact(rest)
	if found {
		r.logf("phone %q found on line %d, name %q", contact.Phone, contact.LineIndex+2, contact.Name)
	} else {
		contact = Contact{LineIndex: 0, Name: strings.TrimSpace(rest[0])}
		r.logf("no phone found, using line 2 as name %q", contact.Name)
	}
	rest = append(rest[:contact.LineIndex], rest[contact.LineIndex+1:]...)
	r.state = stateContactResolved

	flightInfo := strings.TrimSpace(strings.Join(rest, " "))
	r.logf("flight info %q", flightInfo)

	vehicle := SplitVehicle(header.VehicleDescriptor)
	r.logf("vehicle brand=%q model=%q plate=%q", vehicle.Brand, vehicle.Model, vehicle.Plate)

	internalNote := internalNotes(text)
	if internalNote != "" {
		r.logf("internal note %q", internalNote)
	}
	email := emailRe.FindString(text)

	arrival := span.Arrival
	dep := *departure
	res = &Result{
		Reservation: domain.Reservation{
			PickupTime:        domain.TimeOfDayFrom(dep),
			PersonName:        contact.Name,
			Phone:             contact.Phone,
			Email:             email,
			VehicleDescriptor: header.VehicleDescriptor,
			VehicleBrand:      vehicle.Brand,
			VehicleModel:      vehicle.Model,
			VehiclePlate:      vehicle.Plate,
			IsPaid:            header.IsPaid,
			AmountDue:         header.AmountDue,
			UsesGarage:        header.UsesGarage(),
			GarageSlot:        header.SlotID,
			FlightInfo:        flightInfo,
			PublicNote:        header.KeywordList(),
			InternalNote:      internalNote,
			ServiceFlags:      header.Flags(),
			DayCount:          dayCount,
			Arrival:           &arrival,
			Departure:         &dep,
		},
		Date: domain.DateOf(dep),
	}
	r.state = stateDone
	r.logf("scheduled on %s at %s", res.Date, res.Reservation.PickupTime)
	res.Trace = r.trace
	return res, nil
}

func nonBlankLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// stayLength counts calendar days between the two instants, at least one.
func stayLength(arrival, departure time.Time) int {
	days := int(domain.DateOf(departure).Time().Sub(domain.DateOf(arrival).Time()).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

func internalNotes(text string) string {
	var notes []string
	if m := taxIDRe.FindStringSubmatch(text); m != nil {
		notes = append(notes, "NIP "+m[1])
	}
	if invoiceRe.MatchString(text) {
		notes = append(notes, "faktura")
	}
	return strings.Join(notes, "; ")
}
