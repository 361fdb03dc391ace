package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AccountsRepo interface {
	CreateAccount(ctx context.Context, account *Account) (*Account, error)
	GetAccountByID(ctx context.Context, id primitive.ObjectID) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	ListAccounts(ctx context.Context) ([]*Account, error)
	SaveAccount(ctx context.Context, account *Account) error
	DeleteAccount(ctx context.Context, id primitive.ObjectID) error
	CountAccountsByRole(ctx context.Context, role Role) (int64, error)
}

func (a *Account) BeforeCreate() {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
}

func (mdb *MongodbRepo) CreateAccount(ctx context.Context, account *Account) (*Account, error) {
	col, err := mdb.GetCollection(ctx, AccountsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	account.BeforeCreate()
	if _, err := col.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("error inserting account: %w", err)
	}
	return account, nil
}

func (mdb *MongodbRepo) findAccount(ctx context.Context, filter bson.M, id string) (*Account, error) {
	col, err := mdb.GetCollection(ctx, AccountsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var account Account
	err = col.FindOne(ctx, filter).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Resource: "account", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("error finding account: %w", err)
	}
	return &account, nil
}

func (mdb *MongodbRepo) GetAccountByID(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	return mdb.findAccount(ctx, bson.M{"_id": id}, id.Hex())
}

func (mdb *MongodbRepo) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	return mdb.findAccount(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}, "")
}

func (mdb *MongodbRepo) ListAccounts(ctx context.Context) ([]*Account, error) {
	col, err := mdb.GetCollection(ctx, AccountsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	cursor, err := col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error finding accounts: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := []*Account{}
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("error decoding accounts: %w", err)
	}
	return accounts, nil
}

func (mdb *MongodbRepo) SaveAccount(ctx context.Context, account *Account) error {
	col, err := mdb.GetCollection(ctx, AccountsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	account.UpdatedAt = time.Now().UTC()
	res, err := col.ReplaceOne(ctx, bson.M{"_id": account.ID}, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("error saving account: %w", err)
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{Resource: "account", ID: account.ID.Hex()}
	}
	return nil
}

func (mdb *MongodbRepo) DeleteAccount(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, AccountsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}
	if res.DeletedCount == 0 {
		return &NotFoundError{Resource: "account", ID: id.Hex()}
	}
	return nil
}

func (mdb *MongodbRepo) CountAccountsByRole(ctx context.Context, role Role) (int64, error) {
	col, err := mdb.GetCollection(ctx, AccountsColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}
	return col.CountDocuments(ctx, bson.M{"role": role})
}
