package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"villacal/internal/bookings/service"
	httputil "villacal/pkg/http"
	"villacal/pkg/logger"
	"villacal/pkg/model"
)

// PublicHandler serves the unauthenticated calendar view: every booking,
// past or future, reduced to an occupied interval.
type PublicHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewPublicHandler(service service.BookingService, log *logger.Logger) *PublicHandler {
	return &PublicHandler{
		service: service,
		log:     log,
	}
}

func (h *PublicHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.ListPublic(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "PublicList", "error", writeErr)
		}
		return
	}
	if bookings == nil {
		bookings = []model.PublicBooking{}
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "PublicList", "error", err)
	}
}

func (h *PublicHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/public/bookings", h.List)
}
