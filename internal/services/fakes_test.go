package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/joshua-takyi/dharamshala/internal/locks"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/joshua-takyi/dharamshala/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- in-memory VenuesRepo ---

type memVenues struct {
	mu     sync.Mutex
	venues map[primitive.ObjectID]*models.Venue
	saves  int
	// beforeSave, when set, runs once before the next SaveVenue compares versions.
	beforeSave func(m *memVenues, v *models.Venue)
}

func newMemVenues() *memVenues {
	return &memVenues{venues: map[primitive.ObjectID]*models.Venue{}}
}

func (m *memVenues) CreateVenue(ctx context.Context, venue *models.Venue) (*models.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	venue.BeforeCreate()
	m.venues[venue.ID] = venue.Clone()
	return venue, nil
}

func (m *memVenues) GetVenueByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.venues[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "venue", ID: id.Hex()}
	}
	return v.Clone(), nil
}

func (m *memVenues) ListVenues(ctx context.Context, owner *primitive.ObjectID) ([]*models.Venue, error) {
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

func (m *memVenues) SaveVenue(ctx context.Context, venue *models.Venue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hook := m.beforeSave; hook != nil {
		m.beforeSave = nil
		hook(m, venue)
	}
	stored, ok := m.venues[venue.ID]
	if !ok {
		return &models.NotFoundError{Resource: "venue", ID: venue.ID.Hex()}
	}
	if stored.Version != venue.Version {
		return models.ErrStaleVenue
	}
	venue.Version++
	m.venues[venue.ID] = venue.Clone()
	m.saves++
	return nil
}

func (m *memVenues) DeleteVenue(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.venues[id]; !ok {
		return &models.NotFoundError{Resource: "venue", ID: id.Hex()}
	}
	delete(m.venues, id)
	return nil
}

func (m *memVenues) CountVenues(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.venues)), nil
}

func (m *memVenues) CountBookings(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, v := range m.venues {
		n += int64(len(v.BookedDates))
	}
	return n, nil
}

func (m *memVenues) stored(id primitive.ObjectID) *models.Venue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.venues[id].Clone()
}

// --- in-memory AccountsRepo ---

type memAccounts struct {
	mu       sync.Mutex
	accounts map[primitive.ObjectID]*models.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: map[primitive.ObjectID]*models.Account{}}
}

func (m *memAccounts) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
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

func (m *memAccounts) GetAccountByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "account", ID: id.Hex()}
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
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

func (m *memAccounts) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Account{}
	for _, a := range m.accounts {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memAccounts) SaveAccount(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return &models.NotFoundError{Resource: "account", ID: account.ID.Hex()}
	}
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *memAccounts) DeleteAccount(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return &models.NotFoundError{Resource: "account", ID: id.Hex()}
	}
	delete(m.accounts, id)
	return nil
}

func (m *memAccounts) CountAccountsByRole(ctx context.Context, role models.Role) (int64, error) {
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

func (m *memAccounts) add(role models.Role, email string) *models.Account {
	a, err := m.CreateAccount(context.Background(), &models.Account{Name: "Test", Email: email, Role: role})
	if err != nil {
		panic(err)
	}
	return a
}

// --- notifier and publisher doubles ---

type sentMail struct {
	To, Subject string
	Payload     notify.Payload
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail map[string]bool
}

func (n *recordingNotifier) Send(ctx context.Context, to, subject string, p notify.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[to] {
		return errors.New("mailbox unavailable")
	}
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Payload: p})
	return nil
}

type publishedEvent struct {
	RoutingKey string
	Payload    any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{RoutingKey: routingKey, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close() {}

// --- fixture ---

type fixture struct {
	venues    *memVenues
	accounts  *memAccounts
	notifier  *recordingNotifier
	publisher *recordingPublisher

	venueSvc     *VenuesService
	bookingSvc   *BookingService
	inventorySvc *InventoryService
	accountSvc   *AccountService

	owner      *models.Account
	superAdmin *models.Account
	stranger   *models.Account
}

func newFixture() *fixture {
	f := &fixture{
		venues:    newMemVenues(),
		accounts:  newMemAccounts(),
		notifier:  &recordingNotifier{fail: map[string]bool{}},
		publisher: &recordingPublisher{},
	}
	locker := locks.NewMemoryLocker()
	logger := discardLogger()

	f.venueSvc = NewVenuesService(f.venues, f.accounts, locker, nil, logger)
	f.bookingSvc = NewBookingService(f.venues, locker, f.notifier, f.publisher, logger)
	f.inventorySvc = NewInventoryService(f.venues, locker, logger)
	f.accountSvc = NewAccountService(f.accounts, f.venues, nil, logger)

	f.owner = f.accounts.add(models.RoleOwner, "owner@example.com")
	f.superAdmin = f.accounts.add(models.RoleSuperAdmin, "root@example.com")
	f.stranger = f.accounts.add(models.RoleOwner, "other@example.com")
	return f
}

func principalOf(a *models.Account) models.Principal {
	return models.Principal{ID: a.ID, Role: a.Role, Email: a.Email}
}

func (f *fixture) createVenue(available ...any) *models.Venue {
	v, err := f.venueSvc.CreateVenue(context.Background(), principalOf(f.owner), models.VenueInput{
		Name:           "Shanti Bhawan",
		Location:       "Haridwar",
		Contact:        "9876543210",
		AvailableDates: available,
	})
	if err != nil {
		panic(err)
	}
	return v
}
