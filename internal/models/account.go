package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole canonicalizes a role name. Spaces and dashes are treated as
// underscores, so "Super Admin" becomes super_admin.
func ParseRole(raw string) (Role, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	switch Role(s) {
	case RoleUser, RoleOwner, RoleAdmin, RoleSuperAdmin:
		return Role(s), true
	case "superadmin":
		return RoleSuperAdmin, true
	}
	return "", false
}

type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	Contact      string             `bson:"contact,omitempty" json:"contact,omitempty" validate:"omitempty,in_contact"`
	PasswordHash string             `bson:"password" json:"-"`
	Role         Role               `bson:"role" json:"role" validate:"required,oneof=user owner admin super_admin"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (a *Account) Sanitize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.Contact = strings.TrimSpace(a.Contact)
}

func (a *Account) Summary() *AccountSummary {
	return &AccountSummary{ID: a.ID, Name: a.Name, Email: a.Email, Contact: a.Contact, Role: a.Role}
}

// AccountSummary is the public view of an account embedded in other responses.
type AccountSummary struct {
	ID      primitive.ObjectID `json:"id"`
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	Contact string             `json:"contact,omitempty"`
	Role    Role               `json:"role"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	ID    primitive.ObjectID
	Role  Role
	Email string
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// CanManage reports whether p may mutate v.
func (p Principal) CanManage(v *Venue) bool {
	return p.IsSuperAdmin() || (!p.ID.IsZero() && v.Owner == p.ID)
}

func (p Principal) CanCreateVenues() bool {
	switch p.Role {
	case RoleOwner, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Contact  string `json:"contact"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountPatch is an admin edit of an account; nil fields are left alone.
type AccountPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Contact  *string `json:"contact"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}
