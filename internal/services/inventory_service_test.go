package services

import (
	"context"
	"errors"
	"testing"

	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func qty(n int) *int { return &n }

func TestInventoryLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := principalOf(f.owner)
	venue := f.createVenue()

	items, err := f.inventorySvc.AddItem(ctx, p, venue.ID.Hex(), models.NewInventoryItem{Name: "Mattress", Description: "single", Quantity: qty(12)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	itemID := items[0].ID.Hex()

	items, err = f.inventorySvc.UpdateItem(ctx, p, venue.ID.Hex(), models.InventoryPatch{ItemID: itemID, Quantity: 15})
	require.NoError(t, err)
	assert.Equal(t, "Mattress", items[0].Name)
	assert.Equal(t, "single", items[0].Description)
	assert.Equal(t, 15, items[0].Quantity)

	items, removed, err := f.inventorySvc.RemoveItem(ctx, p, venue.ID.Hex(), itemID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, items)
	assert.Empty(t, f.venues.stored(venue.ID).Inventory)
}

func TestInventoryRemoveMissIsNoop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := principalOf(f.owner)
	venue := f.createVenue()
	_, err := f.inventorySvc.AddItem(ctx, p, venue.ID.Hex(), models.NewInventoryItem{Name: "Fans", Quantity: qty(3)})
	require.NoError(t, err)
	saves := f.venues.saves

	items, removed, err := f.inventorySvc.RemoveItem(ctx, p, venue.ID.Hex(), primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, items, 1)
	assert.Equal(t, saves, f.venues.saves)
}

func TestInventoryErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	venue := f.createVenue()

	_, err := f.inventorySvc.AddItem(ctx, principalOf(f.owner), venue.ID.Hex(), models.NewInventoryItem{Name: "Fans"})
	var ve *models.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = f.inventorySvc.AddItem(ctx, principalOf(f.stranger), venue.ID.Hex(), models.NewInventoryItem{Name: "Fans", Quantity: qty(1)})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.inventorySvc.UpdateItem(ctx, principalOf(f.owner), venue.ID.Hex(), models.InventoryPatch{ItemID: primitive.NewObjectID().Hex(), Quantity: 2})
	var nf *models.NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, _, err = f.inventorySvc.RemoveItem(ctx, principalOf(f.owner), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
	assert.True(t, errors.As(err, &nf))
}
