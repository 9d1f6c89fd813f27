// AngelaMos | 2026
// business.go

package forms

import (
	"context"
	"strings"

	"github.com/carterperez-dev/debt-manager/internal/business"
	"github.com/carterperez-dev/debt-manager/internal/session"
)

type BusinessSaver interface {
	SaveMyBusiness(
		ctx context.Context,
		req business.SaveBusinessRequest,
	) (*business.SaveBusinessResponse, error)
}

// UserSetter receives the server-confirmed user after a save.
type UserSetter interface {
	SetUser(ctx context.Context, u session.User) error
}

type BusinessProfile struct {
	Name        string
	Email       string
	Phone       string
	Address     string
	Description string
}

// ProfileFrom fills the form from an existing business.
func ProfileFrom(b *business.BusinessResponse) BusinessProfile {
	if b == nil {
		return BusinessProfile{}
	}
	return BusinessProfile{
		Name:        b.Name,
		Email:       b.Email,
		Phone:       b.Phone,
		Address:     b.Address,
		Description: b.Description,
	}
}

func (f *BusinessProfile) Payload() business.SaveBusinessRequest {
	return business.SaveBusinessRequest{
		Name:        strings.TrimSpace(f.Name),
		Email:       strings.TrimSpace(f.Email),
		Phone:       strings.TrimSpace(f.Phone),
		Address:     strings.TrimSpace(f.Address),
		Description: strings.TrimSpace(f.Description),
	}
}

func (f *BusinessProfile) Validate() error {
	return checkStruct(f.Payload())
}

// Submit saves the business and applies the returned user to the session
// before returning, so the caller can navigate straight to the dashboard.
func (f *BusinessProfile) Submit(
	ctx context.Context,
	api BusinessSaver,
	sess UserSetter,
) (*business.SaveBusinessResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	resp, err := api.SaveMyBusiness(ctx, f.Payload())
	if err != nil {
		return nil, err
	}

	if err := sess.SetUser(ctx, resp.User); err != nil {
		return nil, err
	}
	return resp, nil
}
