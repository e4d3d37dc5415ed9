package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/parkingblisko/internal/domain"
	"github.com/Domenick1991/parkingblisko/internal/parser"
	"github.com/Domenick1991/parkingblisko/internal/schedule"
	"github.com/Domenick1991/parkingblisko/internal/service/reservation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockReservationUseCase is a mock implementation of reservation.ReservationUseCase
type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) Parse(ctx context.Context, text string) (*parser.Result, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*parser.Result), args.Error(1)
}

func (m *MockReservationUseCase) Import(ctx context.Context, text string) (*reservation.Scheduled, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Scheduled), args.Error(1)
}

func (m *MockReservationUseCase) Add(ctx context.Context, input reservation.AddReservationInput) (*reservation.Scheduled, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Scheduled), args.Error(1)
}

func (m *MockReservationUseCase) Remove(ctx context.Context, date domain.Date, index int) (*domain.Reservation, error) {
	args := m.Called(ctx, date, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Schedule(ctx context.Context) []schedule.DayBucket {
	args := m.Called(ctx)
	return args.Get(0).([]schedule.DayBucket)
}

func (m *MockReservationUseCase) Grouped(ctx context.Context, threshold int) schedule.GroupedView {
	args := m.Called(ctx, threshold)
	return args.Get(0).(schedule.GroupedView)
}

var may14 = domain.Date{Year: 2025, Month: time.May, Day: 14}

func sampleReservation() domain.Reservation {
	return domain.Reservation{
		PickupTime:        "03:00",
		PersonName:        "Oleksandr Yankov",
		VehicleDescriptor: "Ford Mondeo OKL39353",
		VehicleBrand:      "Ford",
		VehicleModel:      "Mondeo",
		VehiclePlate:      "OKL39353",
		FlightInfo:        "Antalia 4M873",
		IsPaid:            true,
		GarageSlot:        "12",
		UsesGarage:        true,
		DayCount:          12,
	}
}

func newTestContext(method, target string, body io.Reader) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, body)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestReservationHandler_parse(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("POST", "/api/reservations/parse", jsonBody(t, textRequest{Text: "block"}))

	res := &parser.Result{Reservation: sampleReservation(), Date: may14, Trace: []string{"header parsed"}}
	mockService.On("Parse", c.Request.Context(), "block").Return(res, nil)

	handler.parse(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response parser.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, may14, response.Date)
	assert.Equal(t, "Oleksandr Yankov", response.Reservation.PersonName)
	assert.Equal(t, []string{"header parsed"}, response.Trace)

	mockService.AssertExpectations(t)
}

func TestReservationHandler_parse_Failure(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("POST", "/api/reservations/parse", jsonBody(t, textRequest{Text: "a\nb"}))

	perr := &parser.ParseError{Reason: parser.ReasonTooShort, Message: "expected at least 4 lines", Trace: []string{"start"}}
	mockService.On("Parse", c.Request.Context(), "a\nb").Return(nil, perr)

	handler.parse(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "too_short", response.Reason)
	assert.Equal(t, []string{"start"}, response.Trace)
}

func TestReservationHandler_parse_EmptyTextReachesParser(t *testing.T) {
	for _, body := range []string{`{"text":""}`, `{}`} {
		t.Run(body, func(t *testing.T) {
			mockService := &MockReservationUseCase{}
			handler := NewReservationHandler(mockService)

			c, w := newTestContext("POST", "/api/reservations/parse", bytes.NewReader([]byte(body)))
			perr := &parser.ParseError{Reason: parser.ReasonTooShort, Message: "empty input", Trace: []string{"0 non-blank lines"}}
			mockService.On("Parse", c.Request.Context(), "").Return(nil, perr)

			handler.parse(c)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

			var response errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "too_short", response.Reason)
			assert.NotEmpty(t, response.Trace)
			mockService.AssertExpectations(t)
		})
	}
}

func TestReservationHandler_parse_MalformedJSON(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("POST", "/api/reservations/parse", bytes.NewReader([]byte(`{"text":`)))

	handler.parse(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestReservationHandler_import(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("POST", "/api/reservations/import", jsonBody(t, textRequest{Text: "block"}))

	scheduled := &reservation.Scheduled{Reservation: sampleReservation(), Date: may14, Index: 0, EventID: "evt-1"}
	mockService.On("Import", c.Request.Context(), "block").Return(scheduled, nil)

	handler.importText(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response reservation.Scheduled
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "evt-1", response.EventID)
	assert.Equal(t, may14, response.Date)

	mockService.AssertExpectations(t)
}

func TestReservationHandler_add(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	r := sampleReservation()
	c, w := newTestContext("POST", "/api/reservations", jsonBody(t, addReservationRequest{Reservation: r, Date: "2025-05-14"}))

	input := reservation.AddReservationInput{Reservation: r, Date: may14}
	mockService.On("Add", c.Request.Context(), input).Return(&reservation.Scheduled{Reservation: r, Date: may14, Index: 2}, nil)

	handler.add(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response reservation.Scheduled
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Index)

	mockService.AssertExpectations(t)
}

func TestReservationHandler_add_ValidationError(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	r := sampleReservation()
	r.IsPaid = false
	c, w := newTestContext("POST", "/api/reservations", jsonBody(t, addReservationRequest{Reservation: r, Date: "2025-05-14"}))

	verr := &domain.ValidationError{Field: "amount_due", Message: "amount due is required for unpaid reservations"}
	mockService.On("Add", c.Request.Context(), mock.Anything).Return(nil, verr)

	handler.add(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "amount_due", response.Field)
}

func TestReservationHandler_add_BadDate(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("POST", "/api/reservations", jsonBody(t, addReservationRequest{Reservation: sampleReservation(), Date: "14.05.2025"}))

	handler.add(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestReservationHandler_remove(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewReservationHandler(mockService)

	c, w := newTestContext("DELETE", "/api/reservations/2025-05-14/0", nil)
	c.Params = gin.Params{{Key: "date", Value: "2025-05-14"}, {Key: "index", Value: "0"}}

	removed := sampleReservation()
	mockService.On("Remove", c.Request.Context(), may14, 0).Return(&removed, nil)

	handler.remove(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response domain.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "OKL39353", response.VehiclePlate)

	mockService.AssertExpectations(t)
}

func TestReservationHandler_remove_Errors(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		index string
		err   error
		code  int
	}{
		{"bad date", "14-05-2025", "0", nil, http.StatusBadRequest},
		{"bad index", "2025-05-14", "first", nil, http.StatusBadRequest},
		{"unknown day", "2025-05-14", "0", schedule.ErrDayNotFound, http.StatusNotFound},
		{"index out of range", "2025-05-14", "7", fmt.Errorf("remove: %w", schedule.ErrIndexOutOfRange), http.StatusNotFound},
		{"unexpected", "2025-05-14", "0", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockReservationUseCase{}
			handler := NewReservationHandler(mockService)

			c, w := newTestContext("DELETE", "/api/reservations/"+tt.date+"/"+tt.index, nil)
			c.Params = gin.Params{{Key: "date", Value: tt.date}, {Key: "index", Value: tt.index}}
			if tt.err != nil {
				mockService.On("Remove", c.Request.Context(), mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			handler.remove(c)

			assert.Equal(t, tt.code, w.Code)
		})
	}
}
