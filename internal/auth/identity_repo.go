package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
)

// IdentityRepository persists sign-in credentials.
type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Create inserts a credential row.
func (r *IdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	return r.db.WithContext(ctx).Create(identity).Error
}

// FindByEmail expects an already normalized email.
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var identity models.Identity
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}
