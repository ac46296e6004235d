package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vporoshin/aeroreserve/internal/domain"
	"github.com/vporoshin/aeroreserve/internal/service/booking"
)

type BookingHandler struct {
	service  booking.BookingUseCase
	validate *validator.Validate
}

type passengerInfo struct {
	Title          string `json:"title" validate:"required"`
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	DateOfBirth    string `json:"date_of_birth" validate:"required"`
	PassportNumber string `json:"passport_number,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	SeatPreference string `json:"seat_preference,omitempty"`
	MealPreference string `json:"meal_preference,omitempty"`
}

type contactInfo struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type createBookingRequest struct {
	FlightInstanceID uuid.UUID       `json:"flight_instance_id" validate:"required"`
	Passengers       []passengerInfo `json:"passengers" validate:"required,min=1,dive"`
	Contact          contactInfo     `json:"contact" validate:"required"`
}

type bookingResponse struct {
	BookingID        string          `json:"booking_id"`
	FlightInstanceID string          `json:"flight_instance_id"`
	Seats            int             `json:"seats"`
	Status           string          `json:"status"`
	TotalCents       int64           `json:"total_cents"`
	Currency         string          `json:"currency"`
	ConfirmationRef  string          `json:"confirmation_ref,omitempty"`
	ExpiresAt        string          `json:"expires_at"`
	PassengerDetails json.RawMessage `json:"passenger_details,omitempty"`
	ContactInfo      json.RawMessage `json:"contact_info,omitempty"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		BookingID:        b.ID.String(),
		FlightInstanceID: b.FlightInstanceID.String(),
		Seats:            b.Seats,
		Status:           string(b.Status),
		TotalCents:       b.TotalCents,
		Currency:         b.Currency,
		ConfirmationRef:  b.ConfirmationRef,
		ExpiresAt:        b.ExpiresAt.Format(time.RFC3339),
		PassengerDetails: b.PassengerDetails,
		ContactInfo:      b.ContactInfo,
	}
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service, validate: validator.New()}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passengers, err := json.Marshal(req.Passengers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contact, err := json.Marshal(req.Contact)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateHold(c.Request.Context(), booking.CreateHoldInput{
		FlightInstanceID: req.FlightInstanceID,
		Seats:            len(req.Passengers),
		PassengerDetails: passengers,
		ContactInfo:      contact,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.ReleaseHold(c.Request.Context(), id, "cancelled by user")
	if errors.Is(err, domain.ErrAlreadyFinalized) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": string(b.Status)})
		return
	}
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(b))
}

// writeBookingError maps the reservation core's failure kinds onto status
// codes. ReservationConflict is the one clients should retry.
func writeBookingError(c *gin.Context, err error) {
	var storeErr *domain.StoreError
	switch {
	case errors.Is(err, domain.ErrInstanceNotFound), errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInstanceNotAvailable),
		errors.Is(err, domain.ErrInsufficientSeats),
		errors.Is(err, domain.ErrReservationConflict),
		errors.Is(err, domain.ErrAlreadyFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &storeErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
