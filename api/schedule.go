package api

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/Domenick1991/parkingblisko/internal/domain"
	"github.com/Domenick1991/parkingblisko/internal/schedule"
	"github.com/Domenick1991/parkingblisko/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type Printer interface {
	Render(w io.Writer, days []schedule.DayBucket) error
	RenderGrouped(w io.Writer, view schedule.GroupedView) error
}

type ScheduleHandler struct {
	service reservation.ReservationUseCase
	printer Printer
}

type dayResponse struct {
	Date         domain.Date          `json:"date"`
	Heading      string               `json:"heading"`
	Label        string               `json:"label,omitempty"`
	Departures   int                  `json:"departures"`
	Reservations []domain.Reservation `json:"reservations"`
}

type groupedResponse struct {
	Threshold int           `json:"threshold"`
	Small     []dayResponse `json:"small"`
	Large     []dayResponse `json:"large"`
}

func NewScheduleHandler(service reservation.ReservationUseCase, printer Printer) *ScheduleHandler {
	return &ScheduleHandler{service: service, printer: printer}
}

func (h *ScheduleHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/grouped", h.grouped)
	router.GET("/print", h.print)
}

func (h *ScheduleHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, toDayResponses(h.service.Schedule(c.Request.Context())))
}

func (h *ScheduleHandler) grouped(c *gin.Context) {
	threshold, ok := thresholdParam(c)
	if !ok {
		return
	}

	view := h.service.Grouped(c.Request.Context(), threshold)
	c.JSON(http.StatusOK, groupedResponse{
		Threshold: view.Threshold,
		Small:     toDayResponses(view.Small),
		Large:     toDayResponses(view.Large),
	})
}

func (h *ScheduleHandler) print(c *gin.Context) {
	var buf bytes.Buffer
	var err error
	if _, grouped := c.GetQuery("threshold"); grouped {
		threshold, ok := thresholdParam(c)
		if !ok {
			return
		}
		err = h.printer.RenderGrouped(&buf, h.service.Grouped(c.Request.Context(), threshold))
	} else {
		err = h.printer.Render(&buf, h.service.Schedule(c.Request.Context()))
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="wyjazdy.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// thresholdParam returns reservation.UseDefaultThreshold when the query
// parameter is absent. Zero is a valid threshold.
func thresholdParam(c *gin.Context) (int, bool) {
	raw := c.Query("threshold")
	if raw == "" {
		return reservation.UseDefaultThreshold, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "threshold must be a non-negative integer", Field: "threshold"})
		return 0, false
	}
	return n, true
}

func toDayResponses(days []schedule.DayBucket) []dayResponse {
	out := make([]dayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, dayResponse{
			Date:         d.Date,
			Heading:      d.Heading(),
			Label:        d.Label,
			Departures:   len(d.Reservations),
			Reservations: d.Reservations,
		})
	}
	return out
}
