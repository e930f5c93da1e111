package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-RoomBookingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-RoomBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-RoomBookingService/pkg/types"
)

const (
	msgInvalidTime  = "некорректный формат времени, ожидается HH:MM"
	msgInvalidRange = "начало интервала должно быть раньше конца"
)

type Handler struct {
	useCase AvailabilityLister
	logger  Logger
}

func NewHandler(useCase AvailabilityLister, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /booking/?from=HH:MM&to=HH:MM
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var req getAvailableSlots.Request
	for _, p := range []struct {
		name string
		dst  *types.TimeString
	}{
		{"from", &req.From},
		{"to", &req.To},
	} {
		raw := query.Get(p.name)
		if raw == "" {
			continue
		}
		ts, err := types.NewTimeStringFromString(raw)
		if err != nil {
			h.logger.Warn("GET /booking - Invalid %s=%q: %v", p.name, raw, err)
			handlers.RespondBadRequest(w, msgInvalidTime)
			return
		}
		*p.dst = ts
	}

	result, err := h.useCase.Execute(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidRange):
			h.logger.Warn("GET /booking - Invalid range: from=%s, to=%s", req.From, req.To)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /booking - Failed to get available slots: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /booking - Available slots returned for %d rooms", len(result.Rooms))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
