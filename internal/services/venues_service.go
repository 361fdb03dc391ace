package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/dharamshala/internal/helpers"
	"github.com/joshua-takyi/dharamshala/internal/locks"
	"github.com/joshua-takyi/dharamshala/internal/models"
)

const imageUploadTimeout = 30 * time.Second

type VenuesService struct {
	venueWriter
	accountsRepo models.AccountsRepo
	uploader     helpers.ImageUploader
}

// NewVenuesService builds the venue directory. uploader may be nil, in which
// case image values are stored as given.
func NewVenuesService(venuesRepo models.VenuesRepo, accountsRepo models.AccountsRepo, locker locks.Locker, uploader helpers.ImageUploader, logger *slog.Logger) *VenuesService {
	return &VenuesService{
		venueWriter:  venueWriter{venuesRepo: venuesRepo, locker: locker, logger: logger},
		accountsRepo: accountsRepo,
		uploader:     uploader,
	}
}

func validateVenue(v *models.Venue) error {
	v.Sanitize()
	if err := models.Validate.Struct(v); err != nil {
		return models.ValidationFromValidator(err)
	}
	return nil
}

// uploadImages pushes inline images to the uploader, bounded by imageUploadTimeout.
func (vs *VenuesService) uploadImages(ctx context.Context, images []string) ([]string, error) {
	if err := helpers.CheckImageRefs(images); err != nil {
		return nil, err
	}
	if vs.uploader == nil || len(images) == 0 {
		return images, nil
	}

	ctx, cancel := context.WithTimeout(ctx, imageUploadTimeout)
	defer cancel()

	type result struct {
		urls []string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		urls, err := vs.uploader.UploadImages(ctx, images, helpers.VenueFolder)
		done <- result{urls, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("failed to upload images: %w", r.err)
		}
		return r.urls, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("image upload timeout")
	}
}

func (vs *VenuesService) resolveOwner(ctx context.Context, p models.Principal, raw string) (*models.Account, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == p.ID.Hex() {
		return nil, nil
	}
	if !p.IsSuperAdmin() {
		return nil, models.ErrForbidden
	}
	id, err := models.ParseObjectID(raw)
	if err != nil {
		return nil, err
	}
	return vs.accountsRepo.GetAccountByID(ctx, id)
}

func (vs *VenuesService) CreateVenue(ctx context.Context, p models.Principal, in models.VenueInput) (*models.Venue, error) {
	if !p.CanCreateVenues() {
		return nil, models.ErrForbidden
	}

	venue := &models.Venue{
		Name:     in.Name,
		Location: in.Location,
		Contact:  in.Contact,
		Images:   in.Images,
		MapURL:   in.MapURL,
		Owner:    p.ID,
	}
	owner, err := vs.resolveOwner(ctx, p, in.Owner)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		venue.Owner = owner.ID
	}

	if err := venue.SetAvailableDates(in.AvailableDates); err != nil {
		return nil, err
	}
	if err := validateVenue(venue); err != nil {
		return nil, err
	}

	images, err := vs.uploadImages(ctx, venue.Images)
	if err != nil {
		return nil, err
	}
	venue.Images = images

	created, err := vs.venuesRepo.CreateVenue(ctx, venue)
	if err != nil {
		return nil, err
	}
	vs.logger.Info("venue created", "venue_id", created.ID.Hex(), "owner", created.Owner.Hex())
	return created, nil
}

// UpdateVenue merges the supplied fields into the stored venue.
func (vs *VenuesService) UpdateVenue(ctx context.Context, p models.Principal, patch models.VenuePatch) (*models.Venue, error) {
	if strings.TrimSpace(patch.ID) == "" {
		return nil, models.NewValidationError("id", "is required")
	}
	id, err := models.ParseObjectID(patch.ID)
	if err != nil {
		return nil, err
	}

	// Access is checked again under the lock; this early check keeps strangers
	// away from the uploader.
	current, err := vs.venuesRepo.GetVenueByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanManage(current) {
		return nil, models.ErrForbidden
	}

	var newOwner *models.Account
	if patch.Owner != nil {
		if !p.IsSuperAdmin() {
			return nil, models.ErrForbidden
		}
		ownerID, err := models.ParseObjectID(*patch.Owner)
		if err != nil {
			return nil, err
		}
		if newOwner, err = vs.accountsRepo.GetAccountByID(ctx, ownerID); err != nil {
			return nil, err
		}
	}

	var images []string
	if patch.Images != nil {
		if images, err = vs.uploadImages(ctx, patch.Images); err != nil {
			return nil, err
		}
	}

	return vs.mutate(ctx, id, p, func(v *models.Venue) error {
		if patch.Name != nil {
			v.Name = *patch.Name
		}
		if patch.Location != nil {
			v.Location = *patch.Location
		}
		if patch.Contact != nil {
			v.Contact = *patch.Contact
		}
		if patch.MapURL != nil {
			v.MapURL = *patch.MapURL
		}
		if images != nil {
			v.Images = images
		}
		if newOwner != nil {
			v.Owner = newOwner.ID
		}
		if patch.AvailableDates != nil {
			if err := v.SetAvailableDates(patch.AvailableDates); err != nil {
				return err
			}
		}
		return validateVenue(v)
	})
}

func (vs *VenuesService) DeleteVenue(ctx context.Context, p models.Principal, rawID string) error {
	id, err := models.ParseObjectID(rawID)
	if err != nil {
		return err
	}

	unlock, err := vs.locker.Lock(ctx, id.Hex())
	if err != nil {
		return err
	}
	defer unlock()

	venue, err := vs.venuesRepo.GetVenueByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.CanManage(venue) {
		return models.ErrForbidden
	}
	if err := vs.venuesRepo.DeleteVenue(ctx, id); err != nil {
		return err
	}
	vs.logger.Info("venue deleted", "venue_id", id.Hex())
	return nil
}

// GetVenueByID is public. With populateOwner the owner's summary is attached
// when the account still exists.
func (vs *VenuesService) GetVenueByID(ctx context.Context, rawID string, populateOwner bool) (*models.VenueDetail, error) {
	id, err := models.ParseObjectID(rawID)
	if err != nil {
		return nil, err
	}
	venue, err := vs.venuesRepo.GetVenueByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.VenueDetail{Venue: venue}
	if populateOwner && !venue.Owner.IsZero() {
		owner, err := vs.accountsRepo.GetAccountByID(ctx, venue.Owner)
		var nf *models.NotFoundError
		switch {
		case err == nil:
			detail.OwnerAccount = owner.Summary()
		case !errors.As(err, &nf):
			return nil, err
		}
	}
	return detail, nil
}

// ListVenues returns the venues visible to the account accountID: all of them
// for a super admin, otherwise the ones it owns. Callers may only list for
// themselves unless they are a super admin.
func (vs *VenuesService) ListVenues(ctx context.Context, p models.Principal, accountID string) ([]*models.Venue, error) {
	id := p.ID
	if strings.TrimSpace(accountID) != "" {
		parsed, err := models.ParseObjectID(accountID)
		if err != nil {
			return nil, err
		}
		id = parsed
	}
	if id != p.ID && !p.IsSuperAdmin() {
		return nil, models.ErrForbidden
	}

	account, err := vs.accountsRepo.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Role == models.RoleSuperAdmin {
		return vs.venuesRepo.ListVenues(ctx, nil)
	}
	return vs.venuesRepo.ListVenues(ctx, &account.ID)
}
