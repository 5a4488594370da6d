package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/rohits-web03/otadash/internal/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Get(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, dbError("User", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, dbError("User", err)
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return dbError("User", err)
	}
	return nil
}

// Update applies the non-nil fields of patch and returns the stored user.
func (r *UserRepo) Update(ctx context.Context, uid string, patch models.UserPatch) (*models.User, error) {
	if !patch.Empty() {
		fields := map[string]any{}
		if patch.Name != nil {
			fields["name"] = *patch.Name
		}
		if patch.Organization != nil {
			fields["organization"] = *patch.Organization
		}
		if patch.Avatar != nil {
			fields["avatar"] = *patch.Avatar
		}
		if patch.Role != nil {
			fields["role"] = *patch.Role
		}
		if patch.LastLogin != nil {
			fields["last_login"] = *patch.LastLogin
		}
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).Updates(fields)
		if res.Error != nil {
			return nil, dbError("User", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, dbError("User", gorm.ErrRecordNotFound)
		}
	}
	return r.Get(ctx, uid)
}

// List returns every user ordered by email.
func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("email asc").Find(&users).Error; err != nil {
		return nil, dbError("Users", err)
	}
	return users, nil
}
