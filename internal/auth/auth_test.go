package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/models"
)

func TestCapabilityTable(t *testing.T) {
	assert.True(t, Can(models.RoleAdmin, ManageUsers))
	assert.True(t, Can(models.RoleAdmin, UploadFirmware))
	assert.True(t, Can(models.RoleManager, BrowseStorage))
	assert.False(t, Can(models.RoleManager, UploadFirmware))
	assert.False(t, Can(models.RoleManager, ManageUsers))
	assert.False(t, Can(models.RoleUnauthorized, ViewDashboard))
	assert.False(t, Can("superuser", ViewDashboard))
	assert.Empty(t, Capabilities(models.RoleUnauthorized))
	assert.Len(t, Capabilities(models.RoleAdmin), 12)
}

func TestRouteFor(t *testing.T) {
	r, ok := RouteFor("/dashboard/sessions/abc")
	require.True(t, ok)
	assert.Equal(t, ViewSessions, r.Action)

	r, ok = RouteFor("dashboard")
	require.True(t, ok)
	assert.Equal(t, ViewDashboard, r.Action)

	_, ok = RouteFor("/settings")
	assert.False(t, ok)

	_, ok = RouteFor("/dashboard/usersx")
	assert.True(t, ok)
}

func TestDecide(t *testing.T) {
	manager := &models.User{UID: "m", Role: models.RoleManager}
	pending := &models.User{UID: "p", Role: models.RoleUnauthorized}

	assert.Equal(t, OutcomeSpinner, Decide(StateOf(true, nil), "/dashboard").Outcome)

	d := Decide(StateOf(false, nil), "/dashboard")
	assert.Equal(t, OutcomeRedirect, d.Outcome)
	assert.Equal(t, LoginPath, d.Redirect)

	d = Decide(StateOf(false, pending), "/dashboard")
	assert.Equal(t, OutcomeAwaitingApproval, d.Outcome)
	assert.Empty(t, d.Redirect)
	assert.Equal(t, []string{"sign-out"}, d.Actions)

	d = Decide(StateOf(false, manager), "/dashboard/users")
	assert.Equal(t, OutcomeAccessDenied, d.Outcome)
	assert.Equal(t, DashboardPath, d.Return)
	assert.Empty(t, d.Redirect)

	assert.Equal(t, OutcomeRender, Decide(StateOf(false, manager), "/dashboard/storage").Outcome)
}

func TestTokensRoundTripAndExpiry(t *testing.T) {
	tok := NewTokens("secret", time.Hour)
	s, exp, err := tok.Issue("u1", "s1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	c, err := tok.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "s1", c.SessionID)

	_, err = NewTokens("other", time.Hour).Parse(s)
	assert.Error(t, err)

	tok.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tok.Parse(s)
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	users := newMemUsers(models.User{UID: "u1", Name: "Ann", Role: models.RoleManager})
	s := NewSession("sid", "u1", time.Now().Add(time.Hour))
	assert.Equal(t, PhaseInit, s.Phase())
	assert.Equal(t, StatusLoading, s.State().Status)

	var changes []Change
	s.OnChange(func(c Change) { changes = append(changes, c) })

	require.NoError(t, s.Resolve(context.Background(), users))
	assert.Equal(t, PhaseReady, s.Phase())
	assert.True(t, s.Can(ViewSessions))
	require.NoError(t, s.Resolve(context.Background(), users))
	require.Len(t, changes, 1, "unchanged user must not notify")

	role := models.RoleAdmin
	_, err := users.Update(context.Background(), "u1", models.UserPatch{Role: &role})
	require.NoError(t, err)
	require.NoError(t, s.Resolve(context.Background(), users))
	require.Len(t, changes, 2)
	assert.Equal(t, models.RoleAdmin, changes[1].User.Role)

	s.SignOut()
	assert.Equal(t, PhaseDisposed, s.Phase())
	assert.Nil(t, s.User())
	require.Len(t, changes, 3)
	assert.Nil(t, changes[2].User)

	err = s.Resolve(context.Background(), users)
	assert.True(t, apperr.Is(err, apperr.ErrorTypeAuth))
	s.SignOut()
	assert.Len(t, changes, 3)
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := NewSession("sid", "u", time.Time{})
	got, ok := FromContext(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestManagerSignOutRevokes(t *testing.T) {
	users := newMemUsers(models.User{UID: "u1", Email: "a@x.io", Role: models.RoleManager})
	rev := &memRevocations{}
	m := NewManager(NewTokens("secret", time.Hour), users, rev)
	ctx := context.Background()

	var disposed []string
	m.OnDispose(func(sid string) { disposed = append(disposed, sid) })

	u, _ := users.Get(ctx, "u1")
	token, _, s, err := m.Start(ctx, u)
	require.NoError(t, err)

	got, err := m.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Active())

	require.NoError(t, m.SignOut(ctx, s))
	assert.Equal(t, []string{s.ID}, disposed)
	assert.Equal(t, 0, m.Active())

	_, err = m.Authenticate(ctx, token)
	assert.True(t, apperr.Is(err, apperr.ErrorTypeAuth))

	_, err = m.Authenticate(ctx, "garbage")
	assert.True(t, apperr.Is(err, apperr.ErrorTypeAuth))
}

func TestManagerRebuildsUnknownSession(t *testing.T) {
	users := newMemUsers(models.User{UID: "u1", Role: models.RoleAdmin})
	tokens := NewTokens("secret", time.Hour)
	token, _, err := tokens.Issue("u1", "restored")
	require.NoError(t, err)

	m := NewManager(tokens, users, &memRevocations{})
	s, err := m.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "restored", s.ID)
	assert.Equal(t, PhaseReady, s.Phase())
}

func TestManagerSweep(t *testing.T) {
	users := newMemUsers(models.User{UID: "u1", Role: models.RoleAdmin})
	m := NewManager(NewTokens("secret", time.Minute), users, &memRevocations{})
	u, _ := users.Get(context.Background(), "u1")
	_, _, s, err := m.Start(context.Background(), u)
	require.NoError(t, err)

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Sweep(time.Now().Add(time.Hour)))
	assert.Equal(t, PhaseDisposed, s.Phase())
}

func TestSignUpAndSignIn(t *testing.T) {
	users := newMemUsers()
	a := NewAccounts(users, "Owner@Example.com")
	ctx := context.Background()

	u, err := a.SignUp(ctx, "Ann", "ann@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUnauthorized, u.Role)

	_, err = a.SignUp(ctx, "Ann", "ANN@example.com", "password1")
	assert.True(t, apperr.Is(err, apperr.ErrorTypeConflict))

	_, err = a.SignUp(ctx, "", "x@example.com", "password1")
	assert.True(t, apperr.Is(err, apperr.ErrorTypeValidation))

	owner, err := a.SignUp(ctx, "Boss", "owner@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, owner.Role)

	got, err := a.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)

	_, err = a.SignIn(ctx, "ann@example.com", "wrong-pass")
	assert.True(t, apperr.Is(err, apperr.ErrorTypeAuth))
	_, err = a.SignIn(ctx, "nobody@example.com", "password1")
	assert.True(t, apperr.Is(err, apperr.ErrorTypeAuth))
}

func TestSignInExternal(t *testing.T) {
	users := newMemUsers(models.User{UID: "o", Email: "owner@example.com", Role: models.RoleManager})
	a := NewAccounts(users, "owner@example.com")
	ctx := context.Background()

	u, err := a.SignInExternal(ctx, Profile{Email: "new@example.com", Name: "New", Picture: "pic"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUnauthorized, u.Role)
	assert.Equal(t, "pic", u.Avatar)

	owner, err := a.SignInExternal(ctx, Profile{Email: "owner@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, owner.Role)
}

func TestChangeRole(t *testing.T) {
	users := newMemUsers(
		models.User{UID: "admin", Role: models.RoleAdmin},
		models.User{UID: "mgr", Role: models.RoleManager},
		models.User{UID: "new", Role: models.RoleUnauthorized},
	)
	a := NewAccounts(users, "")
	ctx := context.Background()
	admin, _ := users.Get(ctx, "admin")
	mgr, _ := users.Get(ctx, "mgr")

	u, err := a.ChangeRole(ctx, admin, "new", models.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, u.Role)

	_, err = a.ChangeRole(ctx, admin, "admin", models.RoleManager)
	assert.True(t, apperr.Is(err, apperr.ErrorTypeAuthorize))

	_, err = a.ChangeRole(ctx, mgr, "new", models.RoleAdmin)
	assert.True(t, apperr.Is(err, apperr.ErrorTypeAuthorize))

	_, err = a.ChangeRole(ctx, admin, "new", "owner")
	assert.True(t, apperr.Is(err, apperr.ErrorTypeValidation))

	_, err = a.ChangeRole(ctx, admin, "ghost", models.RoleManager)
	assert.True(t, apperr.Is(err, apperr.ErrorTypeNotFound))
}

func TestUpdateProfile(t *testing.T) {
	users := newMemUsers(models.User{UID: "u", Name: "Old"})
	a := NewAccounts(users, "")
	org := " Acme "

	u, err := a.UpdateProfile(context.Background(), "u", "New", &org)
	require.NoError(t, err)
	assert.Equal(t, "New", u.Name)
	assert.Equal(t, "Acme", u.Organization)

	_, err = a.UpdateProfile(context.Background(), "u", "  ", nil)
	assert.True(t, apperr.Is(err, apperr.ErrorTypeValidation))
}
