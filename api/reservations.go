package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/parkingblisko/internal/domain"
	"github.com/Domenick1991/parkingblisko/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type textRequest struct {
	Text string `json:"text"`
}

// addReservationRequest carries the record fields flat, next to the schedule date.
type addReservationRequest struct {
	domain.Reservation
	Date string `json:"date"`
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/parse", h.parse)
	router.POST("/import", h.importText)
	router.POST("", h.add)
	router.DELETE("/:date/:index", h.remove)
}

func (h *ReservationHandler) parse(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := h.service.Parse(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) importText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	scheduled, err := h.service.Import(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, scheduled)
}

func (h *ReservationHandler) add(c *gin.Context) {
	var req addReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	input := reservation.AddReservationInput{Reservation: req.Reservation}
	if req.Date != "" {
		date, err := domain.ParseDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "date"})
			return
		}
		input.Date = date
	}

	scheduled, err := h.service.Add(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, scheduled)
}

func (h *ReservationHandler) remove(c *gin.Context) {
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "date"})
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid index", Field: "index"})
		return
	}

	removed, err := h.service.Remove(c.Request.Context(), date, index)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, removed)
}
