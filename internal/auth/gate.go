package auth

import "github.com/rohits-web03/otadash/internal/models"

// Status is where a visitor stands with respect to sign-in and approval.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusUnauthenticated Status = "unauthenticated"
	StatusUnauthorized    Status = "authenticated-unauthorized"
	StatusAuthorized      Status = "authenticated-authorized"
)

type GateState struct {
	Status Status      `json:"status"`
	Role   models.Role `json:"role,omitempty"`
}

// StateOf derives the gate state from the session lookup.
func StateOf(loading bool, user *models.User) GateState {
	switch {
	case loading:
		return GateState{Status: StatusLoading}
	case user == nil:
		return GateState{Status: StatusUnauthenticated}
	case user.Role == models.RoleUnauthorized || !user.Role.Valid():
		return GateState{Status: StatusUnauthorized, Role: models.RoleUnauthorized}
	}
	return GateState{Status: StatusAuthorized, Role: user.Role}
}

type Outcome string

const (
	OutcomeSpinner          Outcome = "spinner"
	OutcomeRedirect         Outcome = "redirect"
	OutcomeAwaitingApproval Outcome = "awaiting-approval"
	OutcomeAccessDenied     Outcome = "access-denied"
	OutcomeRender           Outcome = "render"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Decision tells the client what to show for a protected route.
type Decision struct {
	Outcome  Outcome  `json:"outcome"`
	Redirect string   `json:"redirect,omitempty"`
	Return   string   `json:"return,omitempty"`
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message,omitempty"`
	Actions  []string `json:"actions,omitempty"`
	Route    *Route   `json:"route,omitempty"`
}

// Decide applies the route gate. Unknown routes need only a signed-in, approved user.
func Decide(state GateState, path string) Decision {
	switch state.Status {
	case StatusLoading:
		return Decision{Outcome: OutcomeSpinner}
	case StatusUnauthenticated:
		return Decision{Outcome: OutcomeRedirect, Redirect: LoginPath}
	case StatusUnauthorized:
		return Decision{
			Outcome: OutcomeAwaitingApproval,
			Title:   "Awaiting Approval",
			Message: "Your account has been created but is awaiting approval from an administrator.",
			Actions: []string{"sign-out"},
		}
	}

	route, ok := RouteFor(path)
	if !ok {
		return Decision{Outcome: OutcomeRender}
	}
	if !Can(state.Role, route.Action) {
		return Decision{
			Outcome:  OutcomeAccessDenied,
			Title:    "Access Denied",
			Message:  "You do not have permission to view this page.",
			Actions:  []string{"return-to-dashboard"},
			Return:   DashboardPath,
			Route:    &route,
		}
	}
	return Decision{Outcome: OutcomeRender, Route: &route}
}
