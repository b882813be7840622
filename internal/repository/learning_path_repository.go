package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func (r *LearningPathRepository) Create(path *model.LearningPath) error {
	return r.DB.Create(path).Error
}

func (r *LearningPathRepository) FindByIDAndUser(id string, userID uint) (*model.LearningPath, error) {
	var p model.LearningPath
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	return &p, err
}

func (r *LearningPathRepository) ListByUser(userID uint) ([]model.LearningPath, error) {
	var paths []model.LearningPath
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&paths).Error
	return paths, err
}

// ListByUserAndDomain 领域匹配不区分大小写
func (r *LearningPathRepository) ListByUserAndDomain(userID uint, domain string) ([]model.LearningPath, error) {
	var paths []model.LearningPath
	err := r.DB.Where("user_id = ? AND LOWER(domain) = LOWER(?)", userID, domain).Find(&paths).Error
	return paths, err
}

func (r *LearningPathRepository) Update(path *model.LearningPath) error {
	return r.DB.Save(path).Error
}

// Delete 返回实际删除的行数，0 表示路径不存在或不属于该用户
func (r *LearningPathRepository) Delete(id string, userID uint) (int64, error) {
	res := r.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&model.LearningPath{})
	return res.RowsAffected, res.Error
}

func (r *LearningPathRepository) DeleteByUser(userID uint) error {
	return r.DB.Where("user_id = ?", userID).Delete(&model.LearningPath{}).Error
}
