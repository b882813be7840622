package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) CreateResult(result *model.AssessmentResult) error {
	return r.DB.Create(result).Error
}

// ListRecent 按完成时间倒序返回最近 limit 条记录
func (r *AssessmentRepository) ListRecent(userID uint, limit int) ([]model.AssessmentResult, error) {
	var results []model.AssessmentResult
	err := r.DB.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}

// ListAll 按完成时间正序返回全部记录
func (r *AssessmentRepository) ListAll(userID uint) ([]model.AssessmentResult, error) {
	var results []model.AssessmentResult
	err := r.DB.Where("user_id = ?", userID).
		Order("completed_at ASC").
		Find(&results).Error
	return results, err
}

func (r *AssessmentRepository) DeleteByUser(userID uint) error {
	return r.DB.Where("user_id = ?", userID).Delete(&model.AssessmentResult{}).Error
}
