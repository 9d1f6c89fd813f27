// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/debt-manager/internal/role"
)

type User struct {
	ID            string     `db:"id"`
	Email         string     `db:"email"`
	PasswordHash  string     `db:"password_hash"`
	Name          string     `db:"name"`
	Role          role.Role  `db:"role"`
	BusinessID    *string    `db:"business_id"`
	EmailVerified bool       `db:"email_verified"`
	TokenVersion  int        `db:"token_version"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsOwner() bool {
	return u.Role == role.Owner
}

// HasBusiness reports whether the user is attached to a business. For an
// owner this means the onboarding step has been completed.
func (u *User) HasBusiness() bool {
	return u.BusinessID != nil && *u.BusinessID != ""
}

func (u *User) BusinessIDOrEmpty() string {
	if u.BusinessID == nil {
		return ""
	}
	return *u.BusinessID
}
