package repository

import (
	"time"

	"skillpath_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateSkillsProgress(userID uint, progress map[string]model.SkillProgress) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("skills_progress", datatypes.NewJSONType(progress)).
		Error
}

func (r *UserRepository) UpdateLastActive(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_active_at", time.Now()).
		Error
}

// HardDelete 物理删除用户记录
func (r *UserRepository) HardDelete(userID uint) error {
	return r.DB.Unscoped().Delete(&model.User{}, userID).Error
}
