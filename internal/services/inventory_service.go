package services

import (
	"context"
	"log/slog"

	"github.com/joshua-takyi/dharamshala/internal/locks"
	"github.com/joshua-takyi/dharamshala/internal/models"
)

type InventoryService struct {
	venueWriter
}

func NewInventoryService(venuesRepo models.VenuesRepo, locker locks.Locker, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		venueWriter: venueWriter{venuesRepo: venuesRepo, locker: locker, logger: logger},
	}
}

func (is *InventoryService) AddItem(ctx context.Context, p models.Principal, venueID string, in models.NewInventoryItem) ([]models.InventoryItem, error) {
	id, err := models.ParseObjectID(venueID)
	if err != nil {
		return nil, err
	}
	venue, err := is.mutate(ctx, id, p, func(v *models.Venue) error {
		_, err := v.AddItem(in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return venue.Inventory, nil
}

func (is *InventoryService) UpdateItem(ctx context.Context, p models.Principal, venueID string, patch models.InventoryPatch) ([]models.InventoryItem, error) {
	id, err := models.ParseObjectID(venueID)
	if err != nil {
		return nil, err
	}
	venue, err := is.mutate(ctx, id, p, func(v *models.Venue) error {
		_, err := v.UpdateItem(patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return venue.Inventory, nil
}

// RemoveItem reports removed=false and leaves the venue untouched when the
// item does not exist.
func (is *InventoryService) RemoveItem(ctx context.Context, p models.Principal, venueID, itemID string) ([]models.InventoryItem, bool, error) {
	id, err := models.ParseObjectID(venueID)
	if err != nil {
		return nil, false, err
	}
	var removed bool
	venue, err := is.mutate(ctx, id, p, func(v *models.Venue) error {
		var err error
		if removed, err = v.RemoveItem(itemID); err != nil {
			return err
		}
		if !removed {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return venue.Inventory, removed, nil
}
