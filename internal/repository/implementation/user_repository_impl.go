package implementation

import (
	"context"
	"errors"

	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/mapper"
	"visionvoice-be/internal/model"
	"visionvoice-be/internal/repository/contract"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	m := mapper.UserToModel(user)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	m := mapper.UserToModel(user)
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *userRepository) FindBySubject(ctx context.Context, subject string) (*entity.User, error) {
	var m model.User
	err := r.db.WithContext(ctx).Where("subject = ?", subject).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapper.UserToEntity(&m), nil
}

func (r *userRepository) UpdateTier(ctx context.Context, subject string, tier string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("subject = ?", subject).
		Update("tier", tier).Error
}
