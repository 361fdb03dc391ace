package models

import (
	"fmt"
	"strings"
	"time"
)

// PrepareBookings validates a whole batch before anything is mutated. Every
// problem of every entry is reported; nothing is returned unless all pass.
func PrepareBookings(inputs []BookingInput) ([]Booking, error) {
	if len(inputs) == 0 {
		return nil, NewValidationError("bookings", "at least one booking is required")
	}

	ve := &ValidationError{}
	out := make([]Booking, 0, len(inputs))
	for i, in := range inputs {
		prefix := fmt.Sprintf("bookings[%d].", i)
		b := Booking{
			Name:  strings.TrimSpace(in.Name),
			Phone: strings.TrimSpace(in.Phone),
			Event: strings.TrimSpace(in.Event),
			Email: strings.ToLower(strings.TrimSpace(in.Email)),
		}

		if in.Date == nil {
			ve.Add(prefix+"date", "is required")
		} else if day, err := ParseDay(in.Date); err != nil {
			ve.AddValue(prefix+"date", "is not a valid date", in.Date)
		} else {
			b.Date = day
		}

		if b.Name == "" {
			ve.Add(prefix+"name", "is required")
		}
		if b.Phone == "" {
			ve.Add(prefix+"phone", "is required")
		} else if err := Validate.Var(b.Phone, "len=10,numeric"); err != nil {
			ve.AddValue(prefix+"phone", "must be a 10 digit phone number", b.Phone)
		}
		if b.Email != "" {
			if err := Validate.Var(b.Email, "email"); err != nil {
				ve.AddValue(prefix+"email", "must be a valid email", b.Email)
			}
		}
		out = append(out, b)
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseDayKeys parses every value, reporting all unparseable ones together.
func ParseDayKeys(values []any) ([]DayKey, error) {
	if len(values) == 0 {
		return nil, NewValidationError("dates", "at least one date is required")
	}
	ve := &ValidationError{}
	keys := make([]DayKey, 0, len(values))
	for i, raw := range values {
		k, err := DayKeyOf(raw)
		if err != nil {
			ve.AddValue(fmt.Sprintf("dates[%d]", i), "is not a valid date", raw)
			continue
		}
		keys = append(keys, k)
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (v *Venue) bookedKeys() map[DayKey]struct{} {
	keys := make(map[DayKey]struct{}, len(v.BookedDates))
	for _, b := range v.BookedDates {
		keys[KeyOf(b.Date)] = struct{}{}
	}
	return keys
}

// IsBooked reports whether day already carries a booking.
func (v *Venue) IsBooked(day time.Time) bool {
	_, ok := v.bookedKeys()[KeyOf(day)]
	return ok
}

// Book appends prepared bookings and moves their days out of availableDates.
// The venue is untouched when a ConflictError is returned.
func (v *Venue) Book(bookings []Booking) ([]Booking, error) {
	booked := v.bookedKeys()
	incoming := make(map[DayKey]struct{}, len(bookings))
	for _, b := range bookings {
		k := KeyOf(b.Date)
		if _, ok := booked[k]; ok {
			return nil, &ConflictError{Date: string(k), Reason: "date already booked"}
		}
		if _, ok := incoming[k]; ok {
			return nil, &ConflictError{Date: string(k), Reason: "date appears more than once in the request"}
		}
		incoming[k] = struct{}{}
	}

	accepted := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		b.Date = startOfDay(b.Date)
		v.BookedDates = append(v.BookedDates, b)
		accepted = append(accepted, b)
	}

	available := v.AvailableDates[:0:0]
	for _, d := range v.AvailableDates {
		if _, ok := incoming[KeyOf(d)]; !ok {
			available = append(available, d)
		}
	}
	v.AvailableDates = available
	return accepted, nil
}

// Unbook removes every booking on one of keys and returns their days to
// availableDates, without duplicating a day already listed there.
func (v *Venue) Unbook(keys []DayKey) []Booking {
	want := make(map[DayKey]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}

	var removed []Booking
	kept := make([]Booking, 0, len(v.BookedDates))
	for _, b := range v.BookedDates {
		if _, ok := want[KeyOf(b.Date)]; ok {
			removed = append(removed, b)
			continue
		}
		kept = append(kept, b)
	}
	if len(removed) == 0 {
		return nil
	}
	v.BookedDates = kept

	listed := make(map[DayKey]struct{}, len(v.AvailableDates))
	for _, d := range v.AvailableDates {
		listed[KeyOf(d)] = struct{}{}
	}
	for _, b := range removed {
		k := KeyOf(b.Date)
		if _, ok := listed[k]; ok {
			continue
		}
		listed[k] = struct{}{}
		v.AvailableDates = append(v.AvailableDates, startOfDay(b.Date))
	}
	return removed
}

// SetAvailableDates replaces availableDates with the deduplicated days of
// values. A day that is already booked is a conflict.
func (v *Venue) SetAvailableDates(values []any) error {
	days := make([]time.Time, 0, len(values))
	seen := make(map[DayKey]struct{}, len(values))
	ve := &ValidationError{}
	for i, raw := range values {
		day, err := ParseDay(raw)
		if err != nil {
			ve.AddValue(fmt.Sprintf("availableDates[%d]", i), "is not a valid date", raw)
			continue
		}
		k := KeyOf(day)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		days = append(days, day)
	}
	if err := ve.OrNil(); err != nil {
		return err
	}

	booked := v.bookedKeys()
	for _, d := range days {
		if _, ok := booked[KeyOf(d)]; ok {
			return &ConflictError{Date: string(KeyOf(d)), Reason: "date is booked and cannot be listed as available"}
		}
	}
	v.AvailableDates = days
	return nil
}
