package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/dharamshala/internal/events"
	"github.com/joshua-takyi/dharamshala/internal/locks"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/joshua-takyi/dharamshala/internal/notify"
)

type BookResult struct {
	Venue    *models.Venue    `json:"venue"`
	Bookings []models.Booking `json:"bookings"`
}

type UnbookResult struct {
	Venue    *models.Venue    `json:"venue"`
	Removed  int              `json:"removed"`
	Bookings []models.Booking `json:"bookings"`
}

type BookingService struct {
	venueWriter
	notifier  Notifier
	publisher events.Publisher
}

func NewBookingService(venuesRepo models.VenuesRepo, locker locks.Locker, notifier Notifier, publisher events.Publisher, logger *slog.Logger) *BookingService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &BookingService{
		venueWriter: venueWriter{venuesRepo: venuesRepo, locker: locker, logger: logger},
		notifier:    notifier,
		publisher:   publisher,
	}
}

// Book records every booking or none of them.
func (bs *BookingService) Book(ctx context.Context, p models.Principal, venueID string, inputs []models.BookingInput) (*BookResult, error) {
	id, err := models.ParseObjectID(venueID)
	if err != nil {
		return nil, err
	}
	prepared, err := models.PrepareBookings(inputs)
	if err != nil {
		return nil, err
	}

	var accepted []models.Booking
	venue, err := bs.mutate(ctx, id, p, func(v *models.Venue) error {
		var err error
		accepted, err = v.Book(prepared)
		return err
	})
	if err != nil {
		return nil, err
	}

	bs.logger.Info("dates booked", "venue_id", venue.ID.Hex(), "count", len(accepted))
	bs.afterChange(ctx, venue, accepted, events.BookingCreated)
	return &BookResult{Venue: venue, Bookings: accepted}, nil
}

// Unbook frees the given days. Days without a booking are ignored.
func (bs *BookingService) Unbook(ctx context.Context, p models.Principal, venueID string, dates []any) (*UnbookResult, error) {
	id, err := models.ParseObjectID(venueID)
	if err != nil {
		return nil, err
	}
	keys, err := models.ParseDayKeys(dates)
	if err != nil {
		return nil, err
	}

	var removed []models.Booking
	venue, err := bs.mutate(ctx, id, p, func(v *models.Venue) error {
		removed = v.Unbook(keys)
		if len(removed) == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if removed == nil {
		removed = []models.Booking{}
	}
	if len(removed) > 0 {
		bs.logger.Info("dates unbooked", "venue_id", venue.ID.Hex(), "count", len(removed))
		bs.afterChange(ctx, venue, removed, events.BookingCancelled)
	}
	return &UnbookResult{Venue: venue, Removed: len(removed), Bookings: removed}, nil
}

// afterChange sends the booker emails and the domain event. Neither can fail
// the operation; the ledger write has already happened.
func (bs *BookingService) afterChange(ctx context.Context, venue *models.Venue, bookings []models.Booking, routingKey string) {
	sctx, cancel := detached(ctx)
	defer cancel()

	for _, b := range bookings {
		if b.Email == "" || bs.notifier == nil {
			continue
		}
		subject, message := bookingMessage(venue, routingKey)
		err := bs.notifier.Send(sctx, b.Email, subject, notify.Payload{
			Name:    b.Name,
			Message: message,
			Date:    models.FormatDay(b.Date),
			Event:   b.Event,
		})
		if err != nil {
			bs.logger.Warn("booking email not delivered", "venue_id", venue.ID.Hex(), "to", b.Email, "error", err)
		}
	}

	dates := make([]string, 0, len(bookings))
	for _, b := range bookings {
		dates = append(dates, string(models.KeyOf(b.Date)))
	}
	err := bs.publisher.Publish(sctx, routingKey, events.BookingEvent{
		VenueID:    venue.ID.Hex(),
		VenueName:  venue.Name,
		Dates:      dates,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		bs.logger.Warn("booking event not published", "venue_id", venue.ID.Hex(), "routing_key", routingKey, "error", err)
	}
}

func bookingMessage(venue *models.Venue, routingKey string) (subject, message string) {
	if routingKey == events.BookingCancelled {
		return "Booking Cancelled - " + venue.Name,
			fmt.Sprintf("Your booking at %s, %s has been cancelled.", venue.Name, venue.Location)
	}
	return "Booking Confirmed - " + venue.Name,
		fmt.Sprintf("Your booking at %s, %s is confirmed.", venue.Name, venue.Location)
}
