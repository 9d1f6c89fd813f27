// AngelaMos | 2026
// invite.go

package forms

import (
	"context"
	"strings"

	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/team"
)

type Inviter interface {
	Invite(ctx context.Context, req team.InviteRequest) (*team.InvitationResponse, error)
}

type Invite struct {
	Name  string
	Email string
	Role  string
}

func (f *Invite) Payload() team.InviteRequest {
	return team.InviteRequest{
		Name:  strings.TrimSpace(f.Name),
		Email: strings.ToLower(strings.TrimSpace(f.Email)),
		Role:  role.Role(strings.ToLower(strings.TrimSpace(f.Role))),
	}
}

func (f *Invite) Validate() error {
	p := f.Payload()
	if p.Role != "" && !p.Role.Invitable() {
		return invalid("role must be admin, manager or salesperson")
	}
	return checkStruct(p)
}

func (f *Invite) Submit(ctx context.Context, api Inviter) (*team.InvitationResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return api.Invite(ctx, f.Payload())
}
