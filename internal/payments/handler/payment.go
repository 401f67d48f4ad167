package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lcr/internal/payments/service"
	"lcr/pkg/auth"
	httputil "lcr/pkg/http"
	"lcr/pkg/logger"
	"lcr/pkg/middleware"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

func (h *PaymentHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	payments, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, payments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *PaymentHandler) GetByBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	payment, err := h.service.GetByBookingID(r.Context(), ps.ByName("booking_id"))
	if err != nil {
		h.writeError(w, "GetByBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, payment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/payments", middleware.RequireScope(auth.ScopePaymentRead, h.GetAll))
	router.GET("/api/v1/payments/booking/:booking_id", middleware.RequireScope(auth.ScopePaymentRead, h.GetByBooking))
}
