package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(s string) time.Time {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleVenue(available ...string) *Venue {
	v := &Venue{
		ID:       primitive.NewObjectID(),
		Name:     "Shanti Bhawan",
		Location: "Haridwar",
		Contact:  "9876543210",
		Owner:    primitive.NewObjectID(),
	}
	for _, d := range available {
		v.AvailableDates = append(v.AvailableDates, day(d))
	}
	v.Normalize()
	return v
}

func mustPrepare(t *testing.T, in ...BookingInput) []Booking {
	t.Helper()
	b, err := PrepareBookings(in)
	require.NoError(t, err)
	return b
}

func TestPrepareBookings_ReportsEveryField(t *testing.T) {
	_, err := PrepareBookings([]BookingInput{
		{Date: "2024-06-01", Name: "A", Phone: "1234567890"},
		{Date: "garbage", Name: "", Phone: "12", Email: "nope"},
	})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["bookings[1].date"])
	assert.True(t, fields["bookings[1].name"])
	assert.True(t, fields["bookings[1].phone"])
	assert.True(t, fields["bookings[1].email"])
	assert.False(t, fields["bookings[0].date"])
}

func TestPrepareBookings_Empty(t *testing.T) {
	_, err := PrepareBookings(nil)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestBook_MovesDayOutOfAvailable(t *testing.T) {
	v := sampleVenue("2024-06-01", "2024-06-02")

	accepted, err := v.Book(mustPrepare(t, BookingInput{Date: "2024-06-01T15:00:00Z", Name: "A", Phone: "1234567890"}))
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, day("2024-06-01"), accepted[0].Date)
	assert.Equal(t, []time.Time{day("2024-06-02")}, v.AvailableDates)
	assert.Len(t, v.BookedDates, 1)
}

func TestBook_UnscheduledDayIsAccepted(t *testing.T) {
	v := sampleVenue()
	_, err := v.Book(mustPrepare(t, BookingInput{Date: "2024-07-10", Name: "A", Phone: "1234567890"}))
	require.NoError(t, err)
	assert.True(t, v.IsBooked(day("2024-07-10")))
	assert.Empty(t, v.AvailableDates)
}

func TestBook_DuplicateInBatchChangesNothing(t *testing.T) {
	v := sampleVenue("2024-06-01")
	before := v.Clone()

	_, err := v.Book(mustPrepare(t,
		BookingInput{Date: "2024-06-01", Name: "A", Phone: "1234567890"},
		BookingInput{Date: "2024-06-01T08:00:00Z", Name: "B", Phone: "1234567890"},
	))

	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "2024-06-01", ce.Date)
	assert.Equal(t, before, v)
}

func TestBook_AlreadyBookedChangesNothing(t *testing.T) {
	v := sampleVenue("2024-06-01", "2024-06-03")
	_, err := v.Book(mustPrepare(t, BookingInput{Date: "2024-06-01", Name: "A", Phone: "1234567890"}))
	require.NoError(t, err)
	before := v.Clone()

	_, err = v.Book(mustPrepare(t,
		BookingInput{Date: "2024-06-03", Name: "B", Phone: "1234567890"},
		BookingInput{Date: "2024-06-01", Name: "C", Phone: "1234567890"},
	))

	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, before, v)
}

func TestBookUnbookBook_RoundTrip(t *testing.T) {
	v := sampleVenue("2024-06-01")
	in := BookingInput{Date: "2024-06-01", Name: "A", Phone: "1234567890"}

	_, err := v.Book(mustPrepare(t, in))
	require.NoError(t, err)

	removed := v.Unbook([]DayKey{"2024-06-01"})
	require.Len(t, removed, 1)
	assert.Equal(t, "A", removed[0].Name)
	assert.Empty(t, v.BookedDates)
	assert.Equal(t, []time.Time{day("2024-06-01")}, v.AvailableDates)

	_, err = v.Book(mustPrepare(t, in))
	require.NoError(t, err)
	assert.Len(t, v.BookedDates, 1)
	assert.Empty(t, v.AvailableDates)
}

func TestUnbook_FreeDayIsNoop(t *testing.T) {
	v := sampleVenue("2024-06-01")
	before := v.Clone()

	removed := v.Unbook([]DayKey{"2024-06-01", "2024-08-15"})
	assert.Empty(t, removed)
	assert.Equal(t, before, v)
}

func TestUnbook_DoesNotDuplicateAvailableDay(t *testing.T) {
	v := sampleVenue()
	v.BookedDates = []Booking{{Date: day("2024-06-01"), Name: "A", Phone: "1234567890"}}
	v.AvailableDates = []time.Time{day("2024-06-01")}

	v.Unbook([]DayKey{"2024-06-01"})
	assert.Len(t, v.AvailableDates, 1)
}

func TestParseDayKeys(t *testing.T) {
	keys, err := ParseDayKeys([]any{"2024-06-01", "2024-06-02T10:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, []DayKey{"2024-06-01", "2024-06-02"}, keys)

	_, err = ParseDayKeys([]any{"2024-06-01", "soon"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "soon", ve.Fields[0].Value)

	_, err = ParseDayKeys(nil)
	assert.True(t, errors.As(err, &ve))
}

func TestSetAvailableDates(t *testing.T) {
	v := sampleVenue()
	require.NoError(t, v.SetAvailableDates([]any{"2024-06-01", "2024-06-01T12:00:00Z", "2024-06-02"}))
	assert.Equal(t, []time.Time{day("2024-06-01"), day("2024-06-02")}, v.AvailableDates)

	_, err := v.Book(mustPrepare(t, BookingInput{Date: "2024-06-02", Name: "A", Phone: "1234567890"}))
	require.NoError(t, err)

	err = v.SetAvailableDates([]any{"2024-06-02"})
	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []time.Time{day("2024-06-01")}, v.AvailableDates)
}
