package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vporoshin/aeroreserve/internal/domain"
	"github.com/vporoshin/aeroreserve/internal/service/payment"
)

func paymentBody(bookingID uuid.UUID) []byte {
	body, _ := json.Marshal(map[string]string{
		"booking_id": bookingID.String(),
		"method":     "card",
	})
	return body
}

func TestPaymentHandler_process_approved(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPaymentHandler(payment.NewGateway(mockService, 1.0, 0))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	b := pendingBooking()
	c.Request = httptest.NewRequest("POST", "/payments", bytes.NewReader(paymentBody(b.ID)))
	c.Request.Header.Set("Content-Type", "application/json")

	confirmed := *b
	confirmed.Status = domain.BookingStatusConfirmed

	mockService.On("GetBooking", c.Request.Context(), b.ID).Return(b, nil)
	mockService.On("Confirm", c.Request.Context(), b.ID, mock.AnythingOfType("string")).
		Return(&confirmed, nil)

	handler.process(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response paymentResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, payment.StatusSucceeded, response.Status)
	assert.Len(t, response.ConfirmationRef, 6)
	assert.Equal(t, string(domain.BookingStatusConfirmed), response.Booking.Status)

	mockService.AssertExpectations(t)
}

func TestPaymentHandler_process_declined(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPaymentHandler(payment.NewGateway(mockService, 0.0, 0))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	b := pendingBooking()
	c.Request = httptest.NewRequest("POST", "/payments", bytes.NewReader(paymentBody(b.ID)))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("GetBooking", c.Request.Context(), b.ID).Return(b, nil)

	handler.process(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var response paymentResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, payment.StatusDeclined, response.Status)
	assert.Empty(t, response.ConfirmationRef)

	mockService.AssertNotCalled(t, "Confirm")
}

func TestPaymentHandler_process_bookingNotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPaymentHandler(payment.NewGateway(mockService, 1.0, 0))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	id := uuid.New()
	c.Request = httptest.NewRequest("POST", "/payments", bytes.NewReader(paymentBody(id)))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("GetBooking", c.Request.Context(), id).Return(nil, domain.ErrBookingNotFound)

	handler.process(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandler_process_alreadyFinalized(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPaymentHandler(payment.NewGateway(mockService, 1.0, 0))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	b := pendingBooking()
	b.Status = domain.BookingStatusExpired
	c.Request = httptest.NewRequest("POST", "/payments", bytes.NewReader(paymentBody(b.ID)))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("GetBooking", c.Request.Context(), b.ID).Return(b, nil)

	handler.process(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertNotCalled(t, "Confirm")
}

func TestPaymentHandler_process_badBody(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPaymentHandler(payment.NewGateway(mockService, 1.0, 0))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("POST", "/payments", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.process(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetBooking")
}
