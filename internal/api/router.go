package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	createBookingHandler "github.com/m04kA/SMC-RoomBookingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-RoomBookingService/internal/api/handlers/get_available_slots"
	"github.com/m04kA/SMC-RoomBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-RoomBookingService/pkg/metrics"
)

// Options необязательные части роутера
type Options struct {
	// Metrics включает middleware метрик и endpoint MetricsPath
	Metrics     *metrics.Metrics
	MetricsPath string
	// RateLimiter ограничивает только создание бронирований
	RateLimiter *middleware.RateLimiter
}

// NewRouter собирает маршруты сервиса
func NewRouter(
	createBooking *createBookingHandler.Handler,
	getAvailableSlots *getAvailableSlotsHandler.Handler,
	opts Options,
) *mux.Router {
	r := mux.NewRouter()

	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
		r.Handle(opts.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}

	var create http.Handler = http.HandlerFunc(createBooking.Handle)
	if opts.RateLimiter != nil {
		create = opts.RateLimiter.Middleware(create)
	}

	for _, path := range []string{"/booking/", "/booking"} {
		r.Handle(path, create).Methods(http.MethodPost)
		r.HandleFunc(path, getAvailableSlots.Handle).Methods(http.MethodGet)
	}

	return r
}
