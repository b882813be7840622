package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type FeedbackRepository struct {
	DB *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: db}
}

// Append 反馈只追加写入
func (r *FeedbackRepository) Append(f *model.Feedback) error {
	if f.ID == "" {
		f.ID = model.GenerateUUID()
	}
	return r.DB.Create(f).Error
}

func (r *FeedbackRepository) DeleteByUser(userID uint) error {
	return r.DB.Where("user_id = ?", userID).Delete(&model.Feedback{}).Error
}
