package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NewInventoryItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    *int   `json:"quantity"`
}

// InventoryPatch updates only the fields that carry a value; an empty name
// or description and a zero quantity are left as they are.
type InventoryPatch struct {
	ItemID      string `json:"itemId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

func (v *Venue) AddItem(in NewInventoryItem) (InventoryItem, error) {
	ve := &ValidationError{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		ve.Add("name", "is required")
	}
	if in.Quantity == nil {
		ve.Add("quantity", "is required")
	} else if *in.Quantity < 0 {
		ve.AddValue("quantity", "must not be negative", *in.Quantity)
	}
	if err := ve.OrNil(); err != nil {
		return InventoryItem{}, err
	}

	item := InventoryItem{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Quantity:    *in.Quantity,
	}
	v.Inventory = append(v.Inventory, item)
	return item, nil
}

func (v *Venue) UpdateItem(p InventoryPatch) (InventoryItem, error) {
	if strings.TrimSpace(p.ItemID) == "" {
		return InventoryItem{}, NewValidationError("itemId", "is required")
	}
	id, err := ParseObjectID(p.ItemID)
	if err != nil {
		return InventoryItem{}, err
	}
	if p.Quantity < 0 {
		return InventoryItem{}, NewValidationError("quantity", "must not be negative")
	}

	for i := range v.Inventory {
		item := &v.Inventory[i]
		if item.ID != id {
			continue
		}
		if name := strings.TrimSpace(p.Name); name != "" {
			item.Name = name
		}
		if desc := strings.TrimSpace(p.Description); desc != "" {
			item.Description = desc
		}
		if p.Quantity != 0 {
			item.Quantity = p.Quantity
		}
		return *item, nil
	}
	return InventoryItem{}, &NotFoundError{Resource: "inventory item", ID: id.Hex()}
}

// RemoveItem drops the item with the given id. A missing item is not an
// error; removed reports whether anything changed.
func (v *Venue) RemoveItem(itemID string) (removed bool, err error) {
	id, err := ParseObjectID(itemID)
	if err != nil {
		return false, err
	}
	kept := v.Inventory[:0:0]
	for _, item := range v.Inventory {
		if item.ID == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if removed {
		v.Inventory = kept
	}
	return removed, nil
}
