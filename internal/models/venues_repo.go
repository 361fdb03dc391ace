package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VenuesRepo interface {
	CreateVenue(ctx context.Context, venue *Venue) (*Venue, error)
	GetVenueByID(ctx context.Context, id primitive.ObjectID) (*Venue, error)
	// ListVenues returns every venue when owner is nil.
	ListVenues(ctx context.Context, owner *primitive.ObjectID) ([]*Venue, error)
	// SaveVenue replaces the stored venue only if its version still matches
	// venue.Version, then bumps the version on success.
	SaveVenue(ctx context.Context, venue *Venue) error
	DeleteVenue(ctx context.Context, id primitive.ObjectID) error
	CountVenues(ctx context.Context) (int64, error)
	CountBookings(ctx context.Context) (int64, error)
}

func (v *Venue) BeforeCreate() {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	v.Version = 1
	v.Normalize()
}

func (mdb *MongodbRepo) CreateVenue(ctx context.Context, venue *Venue) (*Venue, error) {
	col, err := mdb.GetCollection(ctx, VenuesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	venue.BeforeCreate()
	if _, err := col.InsertOne(ctx, venue); err != nil {
		return nil, fmt.Errorf("error inserting venue: %w", err)
	}
	return venue, nil
}

func (mdb *MongodbRepo) GetVenueByID(ctx context.Context, id primitive.ObjectID) (*Venue, error) {
	col, err := mdb.GetCollection(ctx, VenuesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var venue Venue
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&venue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Resource: "venue", ID: id.Hex()}
	}
	if err != nil {
		return nil, fmt.Errorf("error finding venue: %w", err)
	}
	venue.Normalize()
	return &venue, nil
}

func (mdb *MongodbRepo) ListVenues(ctx context.Context, owner *primitive.ObjectID) ([]*Venue, error) {
	col, err := mdb.GetCollection(ctx, VenuesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{}
	if owner != nil {
		filter["owner"] = *owner
	}
	cursor, err := col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error finding venues: %w", err)
	}
	defer cursor.Close(ctx)

	venues := []*Venue{}
	for cursor.Next(ctx) {
		var venue Venue
		if err := cursor.Decode(&venue); err != nil {
			return nil, fmt.Errorf("error decoding venue: %w", err)
		}
		venue.Normalize()
		venues = append(venues, &venue)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return venues, nil
}

func (mdb *MongodbRepo) SaveVenue(ctx context.Context, venue *Venue) error {
	col, err := mdb.GetCollection(ctx, VenuesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	expected := venue.Version
	next := *venue
	next.Version = expected + 1
	next.UpdatedAt = time.Now().UTC()
	next.Normalize()

	res, err := col.ReplaceOne(ctx, bson.M{"_id": venue.ID, "version": expected}, &next)
	if err != nil {
		return fmt.Errorf("error saving venue: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := col.CountDocuments(ctx, bson.M{"_id": venue.ID})
		if err != nil {
			return fmt.Errorf("error checking venue: %w", err)
		}
		if n == 0 {
			return &NotFoundError{Resource: "venue", ID: venue.ID.Hex()}
		}
		return ErrStaleVenue
	}

	venue.Version = next.Version
	venue.UpdatedAt = next.UpdatedAt
	return nil
}

func (mdb *MongodbRepo) DeleteVenue(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, VenuesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting venue: %w", err)
	}
	if res.DeletedCount == 0 {
		return &NotFoundError{Resource: "venue", ID: id.Hex()}
	}
	return nil
}

func (mdb *MongodbRepo) CountVenues(ctx context.Context) (int64, error) {
	col, err := mdb.GetCollection(ctx, VenuesColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}
	return col.CountDocuments(ctx, bson.M{})
}

func (mdb *MongodbRepo) CountBookings(ctx context.Context) (int64, error) {
	col, err := mdb.GetCollection(ctx, VenuesColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$bookedDates"}},
		{{Key: "$count", Value: "totalBookings"}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("error counting bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalBookings int64 `bson:"totalBookings"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("error decoding booking count: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].TotalBookings, nil
}
