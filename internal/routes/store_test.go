package routes

import (
	"context"
	"sync"

	"github.com/joshua-takyi/dharamshala/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore backs both repositories for the router tests.
type memStore struct {
	mu       sync.Mutex
	venues   map[primitive.ObjectID]*models.Venue
	accounts map[primitive.ObjectID]*models.Account
}

func newMemStore() *memStore {
	return &memStore{
		venues:   map[primitive.ObjectID]*models.Venue{},
		accounts: map[primitive.ObjectID]*models.Account{},
	}
}

func (m *memStore) CreateVenue(ctx context.Context, venue *models.Venue) (*models.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	venue.BeforeCreate()
	m.venues[venue.ID] = venue.Clone()
	return venue, nil
}

func (m *memStore) GetVenueByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.venues[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "venue", ID: id.Hex()}
	}
	return v.Clone(), nil
}

func (m *memStore) ListVenues(ctx context.Context, owner *primitive.ObjectID) ([]*models.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Venue{}
	for _, v := range m.venues {
		if owner == nil || v.Owner == *owner {
			out = append(out, v.Clone())
		}
	}
	return out, nil
}

func (m *memStore) SaveVenue(ctx context.Context, venue *models.Venue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.venues[venue.ID]
	if !ok {
		return &models.NotFoundError{Resource: "venue", ID: venue.ID.Hex()}
	}
	if stored.Version != venue.Version {
		return models.ErrStaleVenue
	}
	venue.Version++
	m.venues[venue.ID] = venue.Clone()
	return nil
}

func (m *memStore) DeleteVenue(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.venues[id]; !ok {
		return &models.NotFoundError{Resource: "venue", ID: id.Hex()}
	}
	delete(m.venues, id)
	return nil
}

func (m *memStore) CountVenues(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.venues)), nil
}

func (m *memStore) CountBookings(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, v := range m.venues {
		n += int64(len(v.BookedDates))
	}
	return n, nil
}

func (m *memStore) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == account.Email {
			return nil, models.ErrDuplicateAccount
		}
	}
	account.BeforeCreate()
	cp := *account
	m.accounts[account.ID] = &cp
	return account, nil
}

func (m *memStore) GetAccountByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "account", ID: id.Hex()}
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "account"}
}

func (m *memStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Account{}
	for _, a := range m.accounts {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) SaveAccount(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return &models.NotFoundError{Resource: "account", ID: account.ID.Hex()}
	}
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *memStore) DeleteAccount(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return &models.NotFoundError{Resource: "account", ID: id.Hex()}
	}
	delete(m.accounts, id)
	return nil
}

func (m *memStore) CountAccountsByRole(ctx context.Context, role models.Role) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}
