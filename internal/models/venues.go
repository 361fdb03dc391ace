package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is one booked day of a venue, embedded in the venue document.
type Booking struct {
	Date  time.Time `bson:"date" json:"date"`
	Name  string    `bson:"name" json:"name"`
	Phone string    `bson:"phone" json:"phone"`
	Event string    `bson:"event,omitempty" json:"event,omitempty"`
	Email string    `bson:"email,omitempty" json:"email,omitempty"`
}

// BookingInput is a booking as received from clients; Date is anything ParseDay understands.
type BookingInput struct {
	Date  any    `json:"date"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Event string `json:"event,omitempty"`
	Email string `json:"email,omitempty"`
}

type InventoryItem struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Quantity    int                `bson:"quantity" json:"quantity"`
}

type Venue struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name" validate:"required"`
	Location string             `bson:"location" json:"location" validate:"required"`
	Contact  string             `bson:"contact" json:"contact" validate:"required,len=10,numeric"`
	Images   []string           `bson:"images" json:"images"`
	MapURL   string             `bson:"mapUrl,omitempty" json:"mapUrl,omitempty" validate:"omitempty,url"`
	Owner    primitive.ObjectID `bson:"owner" json:"owner" validate:"required"`

	AvailableDates []time.Time     `bson:"availableDates" json:"availableDates"`
	BookedDates    []Booking       `bson:"bookedDates" json:"bookedDates"`
	Inventory      []InventoryItem `bson:"inventory" json:"inventory"`

	// Version is bumped on every save and used as the compare-and-swap token.
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Normalize replaces nil collections so documents always serialize as arrays.
func (v *Venue) Normalize() {
	if v.Images == nil {
		v.Images = []string{}
	}
	if v.AvailableDates == nil {
		v.AvailableDates = []time.Time{}
	}
	if v.BookedDates == nil {
		v.BookedDates = []Booking{}
	}
	if v.Inventory == nil {
		v.Inventory = []InventoryItem{}
	}
}

func (v *Venue) Sanitize() {
	v.Name = strings.TrimSpace(v.Name)
	v.Location = strings.TrimSpace(v.Location)
	v.Contact = strings.TrimSpace(v.Contact)
	v.MapURL = strings.TrimSpace(v.MapURL)

	images := v.Images[:0]
	for _, img := range v.Images {
		if s := strings.TrimSpace(img); s != "" {
			images = append(images, s)
		}
	}
	v.Images = images
}

// Clone returns a deep copy so a failed operation can be retried from pristine state.
func (v *Venue) Clone() *Venue {
	c := *v
	c.Images = append([]string(nil), v.Images...)
	c.AvailableDates = append([]time.Time(nil), v.AvailableDates...)
	c.BookedDates = append([]Booking(nil), v.BookedDates...)
	c.Inventory = append([]InventoryItem(nil), v.Inventory...)
	c.Normalize()
	return &c
}

// VenueDetail is the GetById view, optionally carrying the resolved owner.
type VenueDetail struct {
	*Venue
	OwnerAccount *AccountSummary `json:"ownerAccount,omitempty"`
}

// VenueInput is the create request body.
type VenueInput struct {
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	Contact        string   `json:"contact"`
	Images         []string `json:"images"`
	MapURL         string   `json:"mapUrl"`
	Owner          string   `json:"owner"`
	AvailableDates []any    `json:"availableDates"`
}

// VenuePatch is the update request body; nil means "not supplied".
type VenuePatch struct {
	ID             string   `json:"id"`
	Name           *string  `json:"name"`
	Location       *string  `json:"location"`
	Contact        *string  `json:"contact"`
	Images         []string `json:"images"`
	MapURL         *string  `json:"mapUrl"`
	Owner          *string  `json:"owner"`
	AvailableDates []any    `json:"availableDates"`
}

type DashboardSummary struct {
	TotalVenues      int64 `json:"totalDharamshalas"`
	TotalBookings    int64 `json:"totalBookings"`
	TotalAdmins      int64 `json:"totalAdmins"`
	TotalSuperAdmins int64 `json:"totalSuperAdmins"`
}
