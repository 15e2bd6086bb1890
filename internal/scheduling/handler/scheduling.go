package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"labbook/internal/scheduling/service"
	apperrors "labbook/pkg/errors"
	httputil "labbook/pkg/http"
	"labbook/pkg/logger"
	"labbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SchedulingHandler struct {
	service service.SchedulingService
	log     *logger.Logger
}

func NewSchedulingHandler(service service.SchedulingService, log *logger.Logger) *SchedulingHandler {
	return &SchedulingHandler{
		service: service,
		log:     log,
	}
}

func (h *SchedulingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var query model.AvailabilityQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CheckAvailability", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), &query)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SchedulingHandler) CheckExtension(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var query model.ExtensionQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CheckExtension", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	query.RequestID = ps.ByName("id")

	result, err := h.service.CheckExtension(r.Context(), &query)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckExtension", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckExtension", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SchedulingHandler) ApproveBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := ps.ByName("id")

	items, err := h.service.ApproveBooking(r.Context(), requestID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ApproveBooking", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "ApproveBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SchedulingHandler) Calendar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params := r.URL.Query()

	query := service.CalendarQuery{
		LabID:  params.Get("lab_id"),
		SiteID: params.Get("site_id"),
	}

	var err error
	if query.From, err = parseTimeParam(params.Get("from")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Calendar", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if query.To, err = parseTimeParam(params.Get("to")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Calendar", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	bookings, err := h.service.CalendarView(r.Context(), query)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Calendar", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "Calendar", "operation", "WriteSuccess", "error", err)
	}
}

func parseTimeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid time parameter: %s, expected RFC3339", value))
	}
	return t, nil
}

func (h *SchedulingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/availability/check", h.CheckAvailability)
	router.POST("/bookings/:id/extension-check", h.CheckExtension)
	router.POST("/bookings/:id/approve", h.ApproveBooking)
	router.GET("/calendar", h.Calendar)
}
