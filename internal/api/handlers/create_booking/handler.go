package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-RoomBookingService/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-RoomBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени, ожидается HH:MM"
)

type Handler struct {
	useCase RoomBooker
	logger  Logger
}

func NewHandler(useCase RoomBooker, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /booking/
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /booking - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /booking - Failed to parse request: %v", err)
		var pErr *parseError
		if errors.As(err, &pErr) && pErr.field == "date" {
			handlers.RespondBadRequest(w, msgInvalidDate)
		} else {
			handlers.RespondBadRequest(w, msgInvalidTime)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var detailed *createBooking.DetailedError
		hasDetails := errors.As(err, &detailed)

		switch {
		case hasDetails && (errors.Is(err, createBooking.ErrMaintenanceConflict) ||
			errors.Is(err, createBooking.ErrNoRoomAvailable)):
			h.logger.Warn("POST /booking - Booking conflict: %s", detailed.Message)
			handlers.RespondConflict(w, detailed.Message)

		case hasDetails:
			h.logger.Warn("POST /booking - Invalid request: %s", detailed.Message)
			handlers.RespondBadRequest(w, detailed.Message)

		default:
			h.logger.Error("POST /booking - Failed to create booking: date=%s, people=%d, error=%v",
				req.Date, req.NumberOfPeople, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /booking - Room booked: room=%s, slot=%s-%s, people=%d",
		result.RoomName, useCaseReq.From, useCaseReq.To, useCaseReq.NumberOfPeople)
	handlers.RespondJSON(w, http.StatusOK, CreateBookingResponse{RoomName: string(result.RoomName)})
}
