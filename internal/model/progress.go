package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ProgressStatusInProgress = "in-progress"
	ProgressStatusCompleted  = "completed"

	// LegacyProgressKey 仅携带 taskId 的旧版进度写入统一归并到该记录
	LegacyProgressKey = "legacy"
)

// TaskProgress 单个任务的完成情况
type TaskProgress struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	TimeSpent   int        `json:"timeSpent"` // 分钟
}

// Progress 以 (user_id, learning_path_id) 唯一，completed_tasks 是任务完成情况的唯一来源
// swagger:model Progress
type Progress struct {
	ID              uint                                       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint                                       `gorm:"not null;uniqueIndex:idx_progress_user_path" json:"userId"`
	LearningPathID  string                                     `gorm:"size:64;not null;uniqueIndex:idx_progress_user_path" json:"learningPathId"`
	CompletedTasks  datatypes.JSONType[map[string]TaskProgress] `json:"completedTasks"`
	OverallProgress float64                                    `gorm:"default:0" json:"overallProgress"`
	Score           *float64                                   `json:"score,omitempty"`
	Status          string                                     `gorm:"size:20;default:'in-progress'" json:"status"`
	TimeSpent       int                                        `gorm:"default:0" json:"timeSpent"` // 分钟
	CreatedAt       time.Time                                  `json:"createdAt"`
	UpdatedAt       time.Time                                  `gorm:"index" json:"updatedAt"`
}

func (Progress) TableName() string {
	return "progress"
}

// TasksMap 返回可修改的任务进度副本
func (p *Progress) TasksMap() map[string]TaskProgress {
	out := make(map[string]TaskProgress)
	for k, v := range p.CompletedTasks.Data() {
		out[k] = v
	}
	return out
}
