package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 在同一事务内完成“不存在则创建、存在则加锁修改”，
// 依赖 (user_id, learning_path_id) 唯一索引保证并发请求只产生一条记录
func (r *ProgressRepository) Upsert(userID uint, learningPathID string, mutate func(p *model.Progress)) (*model.Progress, error) {
	var out model.Progress
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		seed := model.Progress{
			UserID:         userID,
			LearningPathID: learningPathID,
			CompletedTasks: datatypes.NewJSONType(map[string]model.TaskProgress{}),
			Status:         model.ProgressStatusInProgress,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND learning_path_id = ?", userID, learningPathID).
			First(&out).Error; err != nil {
			return err
		}

		mutate(&out)
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProgressRepository) FindByUserAndPath(userID uint, learningPathID string) (*model.Progress, error) {
	var p model.Progress
	err := r.DB.Where("user_id = ? AND learning_path_id = ?", userID, learningPathID).First(&p).Error
	return &p, err
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.Progress, error) {
	var list []model.Progress
	err := r.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&list).Error
	return list, err
}

func (r *ProgressRepository) DeleteByUser(userID uint) error {
	return r.DB.Where("user_id = ?", userID).Delete(&model.Progress{}).Error
}

func (r *ProgressRepository) DeleteByPath(userID uint, learningPathID string) error {
	return r.DB.Where("user_id = ? AND learning_path_id = ?", userID, learningPathID).Delete(&model.Progress{}).Error
}
