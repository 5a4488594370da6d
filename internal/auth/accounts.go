package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/logs"
	"github.com/rohits-web03/otadash/internal/models"
)

// UserStore is the persistence Accounts needs.
type UserStore interface {
	UserGetter
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, uid string, patch models.UserPatch) (*models.User, error)
}

// Profile is what an external identity provider tells us about a user.
type Profile struct {
	Email   string
	Name    string
	Picture string
}

// Accounts signs users up and in, and applies role and profile changes.
type Accounts struct {
	users      UserStore
	ownerEmail string
	now        func() time.Time
	log        *logrus.Entry
}

func NewAccounts(users UserStore, ownerEmail string) *Accounts {
	return &Accounts{
		users:      users,
		ownerEmail: strings.ToLower(strings.TrimSpace(ownerEmail)),
		now:        time.Now,
		log:        logs.WithComponent("accounts"),
	}
}

func (a *Accounts) isOwner(email string) bool {
	return a.ownerEmail != "" && strings.EqualFold(strings.TrimSpace(email), a.ownerEmail)
}

func (a *Accounts) initialRole(email string) models.Role {
	if a.isOwner(email) {
		return models.RoleAdmin
	}
	return models.RoleUnauthorized
}

// SignUp creates a password account. New accounts await approval unless the
// email is the owner's.
func (a *Accounts) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, apperr.NewValidationError("Name, email and password are required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.NewValidationError("Invalid email address", err)
	}
	if len(password) < 8 {
		return nil, apperr.NewValidationError("Password must be at least 8 characters", nil)
	}

	_, err := a.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.NewConflictError("User already exists with this email", nil)
	case !apperr.Is(err, apperr.ErrorTypeNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.NewInternalError("Failed to hash password", err)
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		Role:         a.initialRole(email),
		PasswordHash: string(hash),
	}
	if err := a.users.Create(ctx, u); err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{"user": u.UID, "role": u.Role}).Info("user registered")
	return u, nil
}

// SignIn checks a password and records the login.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.NewValidationError("Email and password are required", nil)
	}
	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.ErrorTypeNotFound) {
			return nil, apperr.NewAuthError("Invalid credentials", nil)
		}
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.NewAuthError("Invalid credentials", nil)
	}
	return a.recordLogin(ctx, u, models.UserPatch{})
}

// SignInExternal signs in a user vouched for by an identity provider,
// creating the account on first sign-in.
func (a *Accounts) SignInExternal(ctx context.Context, p Profile) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		return nil, apperr.NewAuthError("Identity provider returned no email", nil)
	}
	u, err := a.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		patch := models.UserPatch{}
		if p.Picture != "" && p.Picture != u.Avatar {
			patch.Avatar = &p.Picture
		}
		return a.recordLogin(ctx, u, patch)
	case !apperr.Is(err, apperr.ErrorTypeNotFound):
		return nil, err
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = email
	}
	u = &models.User{Name: name, Email: email, Avatar: p.Picture, Role: a.initialRole(email)}
	if err := a.users.Create(ctx, u); err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{"user": u.UID, "role": u.Role}).Info("user created on first sign-in")
	return a.recordLogin(ctx, u, models.UserPatch{})
}

func (a *Accounts) recordLogin(ctx context.Context, u *models.User, patch models.UserPatch) (*models.User, error) {
	now := a.now()
	patch.LastLogin = &now
	if a.isOwner(u.Email) && u.Role != models.RoleAdmin {
		admin := models.RoleAdmin
		patch.Role = &admin
	}
	return a.users.Update(ctx, u.UID, patch)
}

// ChangeRole lets an actor with ManageUsers set another user's role.
func (a *Accounts) ChangeRole(ctx context.Context, actor *models.User, uid string, role models.Role) (*models.User, error) {
	if actor == nil || !Can(actor.Role, ManageUsers) {
		return nil, apperr.NewAuthorizationError("Only administrators can change roles", nil)
	}
	if actor.UID == uid {
		return nil, apperr.NewAuthorizationError("You cannot change your own role", nil)
	}
	if !role.Valid() {
		return nil, apperr.NewValidationError("Invalid role", nil).WithDetails(map[string]any{
			"allowed": []models.Role{models.RoleManager, models.RoleAdmin, models.RoleUnauthorized},
		})
	}
	if _, err := a.users.Get(ctx, uid); err != nil {
		return nil, err
	}
	u, err := a.users.Update(ctx, uid, models.UserPatch{Role: &role})
	if err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{"actor": actor.UID, "user": uid, "role": role}).Info("role changed")
	return u, nil
}

// UpdateProfile changes a user's own name and organization. Name is required.
func (a *Accounts) UpdateProfile(ctx context.Context, uid, name string, organization *string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.NewValidationError("Name is required", nil)
	}
	patch := models.UserPatch{Name: &name}
	if organization != nil {
		org := strings.TrimSpace(*organization)
		patch.Organization = &org
	}
	return a.users.Update(ctx, uid, patch)
}
