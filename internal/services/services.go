package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joshua-takyi/dharamshala/internal/locks"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/joshua-takyi/dharamshala/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// maxSaveAttempts bounds how often a mutation is re-applied after losing a version race.
	maxSaveAttempts   = 5
	sideEffectTimeout = 20 * time.Second
)

// errNoChange lets a mutation report that nothing needs to be written.
var errNoChange = errors.New("no change")

// Notifier delivers a rendered notification to one recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject string, p notify.Payload) error
}

// venueWriter applies mutations to one venue under its lock with a
// version-checked save.
type venueWriter struct {
	venuesRepo models.VenuesRepo
	locker     locks.Locker
	logger     *slog.Logger
}

// mutate loads the venue, checks that p may manage it and runs fn on a copy.
// When the save loses a race fn runs again against the fresh document, so
// every check inside fn sees the winning write.
func (w *venueWriter) mutate(ctx context.Context, id primitive.ObjectID, p models.Principal, fn func(v *models.Venue) error) (*models.Venue, error) {
	unlock, err := w.locker.Lock(ctx, id.Hex())
	if err != nil {
		return nil, err
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		current, err := w.venuesRepo.GetVenueByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !p.CanManage(current) {
			return nil, models.ErrForbidden
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			if errors.Is(err, errNoChange) {
				return current, nil
			}
			return nil, err
		}

		err = w.venuesRepo.SaveVenue(ctx, next)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, models.ErrStaleVenue) || attempt >= maxSaveAttempts {
			return nil, err
		}
		w.logger.Warn("venue changed during write, retrying", "venue_id", id.Hex(), "attempt", attempt)
	}
}

// detached returns a context for work that must outlive the request.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
}
