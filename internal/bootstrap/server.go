package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vporoshin/aeroreserve/api"
	"github.com/vporoshin/aeroreserve/config"
	"github.com/vporoshin/aeroreserve/internal/service/booking"
	"github.com/vporoshin/aeroreserve/internal/service/flights"
	"github.com/vporoshin/aeroreserve/internal/service/payment"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, gateway *payment.Gateway) error {
	router := NewRouter(flightSvc, bookingSvc, gateway)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, gateway *payment.Gateway) *gin.Engine {
	router := gin.Default()

	v1 := router.Group("/api/v1")
	api.NewFlightHandler(flightSvc).Register(v1.Group("/flight-instances"))
	api.NewBookingHandler(bookingSvc).Register(v1.Group("/bookings"))
	if gateway != nil {
		api.NewPaymentHandler(gateway).Register(v1.Group("/payments"))
	}

	return router
}
