package email

import (
	"context"
	"encoding/json"
	"log"

	"github.com/vporoshin/aeroreserve/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send notifies the booking contact about a lifecycle event. The contact
// payload is opaque to the core; only this consumer peeks inside for an
// address.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	var contact struct {
		Email string `json:"email"`
	}
	if len(event.Contact) > 0 {
		if err := json.Unmarshal(event.Contact, &contact); err != nil {
			log.Printf("parse contact for booking %s: %v", event.BookingID, err)
		}
	}
	if contact.Email == "" {
		log.Printf("no contact email for booking %s, skipping %s notification", event.BookingID, event.Type)
		return nil
	}

	log.Printf("send %s email to %s for booking %s (%d seats)", event.Type, contact.Email, event.BookingID, event.Seats)
	return nil
}
