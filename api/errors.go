package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/parkingblisko/internal/domain"
	"github.com/Domenick1991/parkingblisko/internal/parser"
	"github.com/Domenick1991/parkingblisko/internal/schedule"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Reason string   `json:"reason,omitempty"`
	Field  string   `json:"field,omitempty"`
	Trace  []string `json:"trace,omitempty"`
}

func writeError(c *gin.Context, err error) {
	var perr *parser.ParseError
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &perr):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: perr.Message, Reason: string(perr.Reason), Trace: perr.Trace})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, schedule.ErrMisuse):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
