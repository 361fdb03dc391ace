package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/dharamshala/internal/helpers"
	"github.com/joshua-takyi/dharamshala/internal/models"
)

type LoginResult struct {
	Account   *models.Account `json:"user"`
	Token     string          `json:"token,omitempty"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
}

type AccountService struct {
	accountsRepo models.AccountsRepo
	venuesRepo   models.VenuesRepo
	issuer       *helpers.TokenIssuer
	logger       *slog.Logger
}

// NewAccountService wires the account directory. issuer may be nil when
// tokens come from an external identity provider; Login then returns no token.
func NewAccountService(accountsRepo models.AccountsRepo, venuesRepo models.VenuesRepo, issuer *helpers.TokenIssuer, logger *slog.Logger) *AccountService {
	return &AccountService{
		accountsRepo: accountsRepo,
		venuesRepo:   venuesRepo,
		issuer:       issuer,
		logger:       logger,
	}
}

func validateAccount(a *models.Account) error {
	a.Sanitize()
	if err := models.Validate.Struct(a); err != nil {
		return models.ValidationFromValidator(err)
	}
	return nil
}

func (as *AccountService) Register(ctx context.Context, in models.RegisterInput) (*models.Account, error) {
	role := models.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		parsed, ok := models.ParseRole(in.Role)
		if !ok {
			return nil, models.NewValidationError("role", "must be one of user owner admin")
		}
		if parsed == models.RoleSuperAdmin {
			return nil, models.NewValidationError("role", "super_admin cannot be self-assigned")
		}
		role = parsed
	}

	account := &models.Account{
		Name:    in.Name,
		Email:   in.Email,
		Contact: in.Contact,
		Role:    role,
	}
	ve := &models.ValidationError{}
	if err := validateAccount(account); err != nil {
		var fieldErrs *models.ValidationError
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		ve.Fields = append(ve.Fields, fieldErrs.Fields...)
	}
	if !helpers.IsPasswordStrong(in.Password) {
		ve.Add("password", "must be at least 8 characters with upper and lower case letters, a digit and a symbol")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if _, err := as.accountsRepo.GetAccountByEmail(ctx, account.Email); err == nil {
		return nil, models.ErrDuplicateAccount
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	account.PasswordHash = hash

	created, err := as.accountsRepo.CreateAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	as.logger.Info("account registered", "account_id", created.ID.Hex(), "role", created.Role)
	return created, nil
}

// Login checks the password and, when an issuer is configured, signs a token.
func (as *AccountService) Login(ctx context.Context, in models.LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	ve := &models.ValidationError{}
	if email == "" {
		ve.Add("email", "is required")
	}
	if in.Password == "" {
		ve.Add("password", "is required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	account, err := as.accountsRepo.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !helpers.CheckPassword(account.PasswordHash, in.Password) {
		return nil, models.ErrInvalidCredentials
	}

	result := &LoginResult{Account: account}
	if as.issuer != nil {
		token, expires, err := as.issuer.Issue(account)
		if err != nil {
			return nil, err
		}
		result.Token = token
		result.ExpiresAt = &expires
	}
	return result, nil
}

// Me returns the caller's account, or another one for a super admin.
func (as *AccountService) Me(ctx context.Context, p models.Principal, rawID string) (*models.Account, error) {
	id := p.ID
	if strings.TrimSpace(rawID) != "" {
		parsed, err := models.ParseObjectID(rawID)
		if err != nil {
			return nil, err
		}
		id = parsed
	}
	if id != p.ID && !p.IsSuperAdmin() {
		return nil, models.ErrForbidden
	}
	return as.accountsRepo.GetAccountByID(ctx, id)
}

func (as *AccountService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return as.accountsRepo.ListAccounts(ctx)
}

func (as *AccountService) GetAccount(ctx context.Context, rawID string) (*models.Account, error) {
	id, err := models.ParseObjectID(rawID)
	if err != nil {
		return nil, err
	}
	return as.accountsRepo.GetAccountByID(ctx, id)
}

func (as *AccountService) UpdateAccount(ctx context.Context, rawID string, patch models.AccountPatch) (*models.Account, error) {
	id, err := models.ParseObjectID(rawID)
	if err != nil {
		return nil, err
	}
	account, err := as.accountsRepo.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		account.Name = *patch.Name
	}
	if patch.Email != nil {
		account.Email = *patch.Email
	}
	if patch.Contact != nil {
		account.Contact = *patch.Contact
	}
	if patch.Role != nil {
		role, ok := models.ParseRole(*patch.Role)
		if !ok {
			return nil, models.NewValidationError("role", "must be one of user owner admin super_admin")
		}
		account.Role = role
	}
	if patch.Password != nil {
		if !helpers.IsPasswordStrong(*patch.Password) {
			return nil, models.NewValidationError("password", "is not strong enough")
		}
		if account.PasswordHash, err = helpers.HashPassword(*patch.Password); err != nil {
			return nil, err
		}
	}
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	if err := as.accountsRepo.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	as.logger.Info("account updated", "account_id", account.ID.Hex())
	return account, nil
}

func (as *AccountService) DeleteAccount(ctx context.Context, rawID string) error {
	id, err := models.ParseObjectID(rawID)
	if err != nil {
		return err
	}
	if err := as.accountsRepo.DeleteAccount(ctx, id); err != nil {
		return err
	}
	as.logger.Info("account deleted", "account_id", id.Hex())
	return nil
}

func (as *AccountService) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	var (
		summary models.DashboardSummary
		err     error
	)
	if summary.TotalVenues, err = as.venuesRepo.CountVenues(ctx); err != nil {
		return nil, fmt.Errorf("failed to count venues: %w", err)
	}
	if summary.TotalBookings, err = as.venuesRepo.CountBookings(ctx); err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if summary.TotalAdmins, err = as.accountsRepo.CountAccountsByRole(ctx, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	if summary.TotalSuperAdmins, err = as.accountsRepo.CountAccountsByRole(ctx, models.RoleSuperAdmin); err != nil {
		return nil, fmt.Errorf("failed to count super admins: %w", err)
	}
	return &summary, nil
}

// SeedSuperAdmin creates the bootstrap super admin unless the email is
// already registered. Blank credentials disable seeding.
func (as *AccountService) SeedSuperAdmin(ctx context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := as.accountsRepo.GetAccountByEmail(ctx, email); err == nil {
		return nil
	} else if !isNotFound(err) {
		return err
	}

	if strings.TrimSpace(name) == "" {
		name = "Super Admin"
	}
	account := &models.Account{Name: name, Email: email, Role: models.RoleSuperAdmin}
	if err := validateAccount(account); err != nil {
		return fmt.Errorf("invalid super admin seed: %w", err)
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	account.PasswordHash = hash

	if _, err := as.accountsRepo.CreateAccount(ctx, account); err != nil && !errors.Is(err, models.ErrDuplicateAccount) {
		return err
	}
	as.logger.Info("super admin seeded", "email", account.Email)
	return nil
}

func isNotFound(err error) bool {
	var nf *models.NotFoundError
	return errors.As(err, &nf)
}
