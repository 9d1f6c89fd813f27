// AngelaMos | 2026
// dispatch.go

// Package dispatch picks the dashboard a signed-in member lands on from
// their role and the width of the host display.
package dispatch

import (
	"fmt"

	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/session"
)

type FormFactor int

const (
	Desktop FormFactor = iota
	Mobile
)

// MobileBreakpoint is the first width rendered as desktop.
const MobileBreakpoint = 768

func Classify(width int) FormFactor {
	if width < MobileBreakpoint {
		return Mobile
	}
	return Desktop
}

func (f FormFactor) String() string {
	if f == Mobile {
		return "mobile"
	}
	return "desktop"
}

type Kind int

const (
	KindLoading Kind = iota
	KindRender
	KindRedirect
)

const (
	PathLogin        = "/login"
	PathOnboarding   = "/onboarding/business"
	PathUnauthorized = "/unauthorized"
)

// Decision is either a placeholder, a dashboard view, or a redirect.
type Decision struct {
	Kind Kind
	View string
	Path string
}

func (d Decision) String() string {
	switch d.Kind {
	case KindRender:
		return "render " + d.View
	case KindRedirect:
		return "redirect " + d.Path
	default:
		return "loading"
	}
}

func Loading() Decision {
	return Decision{Kind: KindLoading}
}

func Redirect(path string) Decision {
	return Decision{Kind: KindRedirect, Path: path}
}

func Render(view string) Decision {
	return Decision{Kind: KindRender, View: view}
}

// ViewName joins a dashboard family with a form factor, e.g. "owner-mobile".
func ViewName(d role.Dashboard, f FormFactor) string {
	return fmt.Sprintf("%s-%s", d, f)
}

// Dispatch never redirects while the identity is still resolving. Owners
// without a business always go to onboarding.
func Dispatch(snap session.Snapshot, f FormFactor) Decision {
	switch snap.State {
	case session.Loading:
		return Loading()
	case session.Unauthenticated:
		return Redirect(PathLogin)
	}

	u := snap.User
	if u == nil {
		return Loading()
	}

	if u.Role == role.Owner && !u.HasBusiness {
		return Redirect(PathOnboarding)
	}

	policy, ok := role.PolicyFor(u.Role)
	if !ok {
		return Redirect(PathUnauthorized)
	}
	return Render(ViewName(policy.Dashboard, f))
}
