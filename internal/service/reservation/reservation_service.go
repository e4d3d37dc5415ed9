package reservation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/parkingblisko/internal/domain"
	"github.com/Domenick1991/parkingblisko/internal/kafka"
	"github.com/Domenick1991/parkingblisko/internal/logger"
	"github.com/Domenick1991/parkingblisko/internal/metrics"
	"github.com/Domenick1991/parkingblisko/internal/parser"
	"github.com/Domenick1991/parkingblisko/internal/schedule"
	"github.com/Domenick1991/parkingblisko/internal/submission"
	"github.com/google/uuid"
)

type ReservationUseCase interface {
	Parse(ctx context.Context, text string) (*parser.Result, error)
	Import(ctx context.Context, text string) (*Scheduled, error)
	Add(ctx context.Context, input AddReservationInput) (*Scheduled, error)
	Remove(ctx context.Context, date domain.Date, index int) (*domain.Reservation, error)
	Schedule(ctx context.Context) []schedule.DayBucket
	Grouped(ctx context.Context, threshold int) schedule.GroupedView
}

type Parser interface {
	Parse(text string) (*parser.Result, error)
}

type Cache interface {
	GetParsed(ctx context.Context, text string) (*parser.Result, error)
	SetParsed(ctx context.Context, text string, res *parser.Result) error
	AcquireSubmissionLock(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error)
	ReleaseSubmissionLock(ctx context.Context, fingerprint string) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

const publishRetries = 3

type Submitter interface {
	Submit(ctx context.Context, p submission.Payload) error
}

type AddReservationInput struct {
	Reservation domain.Reservation `json:"reservation"`
	// Date defaults to the day of Reservation.Departure when zero.
	Date domain.Date `json:"date"`
}

type Scheduled struct {
	Reservation domain.Reservation `json:"reservation"`
	Date        domain.Date        `json:"date"`
	Index       int                `json:"index"`
	EventID     string             `json:"event_id"`
	Trace       []string           `json:"trace,omitempty"`
}

type ReservationService struct {
	parser           Parser
	store            *schedule.Store
	cache            Cache
	producer         Producer
	submitter        Submitter
	eventsTopic      string
	source           string
	defaultThreshold int
	lockTTL          time.Duration
	submitSync       bool
	metrics          *metrics.Metrics
	log              logger.Logger
	pending          sync.WaitGroup
}

type ReservationServiceOption func(*ReservationService)

func WithCache(cache Cache, lockTTL time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.cache = cache
		s.lockTTL = lockTTL
	}
}

// WithEvents routes scheduled reservations through Kafka instead of calling the API directly.
func WithEvents(producer Producer, topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithSubmitter(submitter Submitter, source string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.submitter = submitter
		s.source = source
	}
}

func WithDefaultThreshold(n int) ReservationServiceOption {
	return func(s *ReservationService) {
		if n > 0 {
			s.defaultThreshold = n
		}
	}
}

func NewReservationService(
	p Parser,
	store *schedule.Store,
	m *metrics.Metrics,
	log logger.Logger,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		parser:           p,
		store:            store,
		metrics:          m,
		log:              log,
		defaultThreshold: 3,
		source:           "parkingblisko",
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *ReservationService) Parse(ctx context.Context, text string) (*parser.Result, error) {
	if s.cache != nil {
		cached, err := s.cache.GetParsed(ctx, text)
		if err != nil {
			s.log.Warn("parse cache read failed", "error", err)
		} else if cached != nil {
			s.metrics.ParseTotal.WithLabelValues("cached").Inc()
			return cached, nil
		}
	}

	start := time.Now()
	res, err := s.parser.Parse(text)
	s.metrics.ParseDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			s.metrics.ParseTotal.WithLabelValues(string(perr.Reason)).Inc()
			s.log.Info("reservation text rejected", "reason", perr.Reason, "message", perr.Message, "trace", perr.Trace)
		} else {
			s.metrics.ErrorsCount.WithLabelValues("parse").Inc()
		}
		return nil, err
	}
	s.metrics.ParseTotal.WithLabelValues("ok").Inc()
	s.log.Debug("reservation text parsed", "date", res.Date.String(), "trace", res.Trace)

	if s.cache != nil {
		if err := s.cache.SetParsed(ctx, text, res); err != nil {
			s.log.Warn("parse cache write failed", "error", err)
		}
	}
	return res, nil
}

// Import parses text and schedules the result in one step.
func (s *ReservationService) Import(ctx context.Context, text string) (*Scheduled, error) {
	res, err := s.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	scheduled, err := s.Add(ctx, AddReservationInput{Reservation: res.Reservation, Date: res.Date})
	if err != nil {
		return nil, err
	}
	scheduled.Trace = res.Trace
	return scheduled, nil
}

// Add validates the reservation and inserts it into the schedule. The
// schedule is updated whether or not the hand-off to the reservation API
// succeeds; hand-off failures are only logged.
func (s *ReservationService) Add(ctx context.Context, input AddReservationInput) (*Scheduled, error) {
	date := input.Date
	if date.IsZero() && input.Reservation.Departure != nil {
		date = domain.DateOf(*input.Reservation.Departure)
	}
	if date.IsZero() {
		return nil, &domain.ValidationError{Field: "date", Message: "departure date is required"}
	}
	if err := input.Reservation.Validate(); err != nil {
		return nil, err
	}

	r := input.Reservation.Clone()
	if r.DayCount == 0 {
		r.DayCount = 1
	}
	index := s.store.Insert(r, date)
	s.metrics.ScheduleMutations.WithLabelValues("insert").Inc()
	s.metrics.ScheduledTotal.Set(float64(s.store.Len()))

	eventID := uuid.NewString()
	s.log.Info("reservation scheduled", "id", eventID, "date", date.String(), "pickup", string(r.PickupTime), "index", index)
	s.dispatch(ctx, kafka.ReservationEvent{
		Type:        kafka.EventReservationAdded,
		ID:          eventID,
		Source:      s.source,
		Date:        date,
		Reservation: r,
		OccurredAt:  time.Now().UTC(),
	})

	return &Scheduled{Reservation: r, Date: date, Index: index, EventID: eventID}, nil
}

func (s *ReservationService) Remove(ctx context.Context, date domain.Date, index int) (*domain.Reservation, error) {
	removed, err := s.store.Remove(date, index)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("remove").Inc()
		return nil, err
	}
	s.metrics.ScheduleMutations.WithLabelValues("remove").Inc()
	s.metrics.ScheduledTotal.Set(float64(s.store.Len()))
	s.log.Info("reservation removed", "date", date.String(), "index", index)
	s.releaseLock(ctx, Fingerprint(date, removed))

	if s.producer != nil && s.eventsTopic != "" {
		event := kafka.ReservationEvent{
			Type:        kafka.EventReservationRemoved,
			ID:          uuid.NewString(),
			Source:      s.source,
			Date:        date,
			Reservation: removed,
			OccurredAt:  time.Now().UTC(),
		}
		if err := s.producer.PublishWithRetry(ctx, s.eventsTopic, event.ID, event, publishRetries); err != nil {
			s.metrics.ErrorsCount.WithLabelValues("publish").Inc()
			s.log.Warn("failed to publish reservation_removed", "error", err)
		}
	}
	return &removed, nil
}

func (s *ReservationService) Schedule(ctx context.Context) []schedule.DayBucket {
	return s.store.Days()
}

// UseDefaultThreshold asks Grouped for the configured default threshold.
const UseDefaultThreshold = -1

// Grouped uses the configured default when threshold is negative. A zero
// threshold puts every day with departures in the large group.
func (s *ReservationService) Grouped(ctx context.Context, threshold int) schedule.GroupedView {
	if threshold < 0 {
		threshold = s.defaultThreshold
	}
	return s.store.Grouped(threshold)
}

// Wait blocks until background submissions have finished.
func (s *ReservationService) Wait() {
	s.pending.Wait()
}

func (s *ReservationService) dispatch(ctx context.Context, event kafka.ReservationEvent) {
	if s.producer == nil && s.submitter == nil {
		return
	}

	fp := Fingerprint(event.Date, event.Reservation)
	if s.cache != nil {
		ok, err := s.cache.AcquireSubmissionLock(ctx, fp, s.lockTTL)
		if err != nil {
			s.log.Warn("submission lock failed, submitting anyway", "error", err)
		} else if !ok {
			s.metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
			s.log.Info("duplicate reservation not resubmitted", "fingerprint", fp)
			return
		}
	}

	if s.producer != nil && s.eventsTopic != "" {
		if err := s.producer.PublishWithRetry(ctx, s.eventsTopic, event.ID, event, publishRetries); err != nil {
			s.metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
			s.log.Warn("failed to publish reservation_added", "id", event.ID, "error", err)
			s.releaseLock(ctx, fp)
			return
		}
		s.metrics.SubmissionsTotal.WithLabelValues("queued").Inc()
		return
	}

	if s.submitter == nil {
		return
	}
	payload := submission.Payload{ID: event.ID, Source: event.Source, Date: event.Date, Reservation: event.Reservation}
	if s.submitSync {
		s.submit(ctx, payload, fp)
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.submit(context.WithoutCancel(ctx), payload, fp)
	}()
}

func (s *ReservationService) submit(ctx context.Context, p submission.Payload, fp string) {
	if err := s.submitter.Submit(ctx, p); err != nil {
		s.metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		s.log.Warn("reservation submission failed", "id", p.ID, "error", err)
		s.releaseLock(ctx, fp)
		return
	}
	s.metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
}

// releaseLock lets the same reservation be submitted again after a failed
// hand-off or a removal.
func (s *ReservationService) releaseLock(ctx context.Context, fp string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.ReleaseSubmissionLock(ctx, fp); err != nil {
		s.log.Warn("failed to release submission lock", "fingerprint", fp, "error", err)
	}
}

// Fingerprint identifies a reservation for duplicate suppression.
func Fingerprint(date domain.Date, r domain.Reservation) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%s", date, r.PickupTime, r.PersonName, r.VehicleDescriptor, r.FlightInfo)))
	return hex.EncodeToString(sum[:16])
}

var _ ReservationUseCase = (*ReservationService)(nil)
