package model

import (
	"time"

	"gorm.io/datatypes"
)

// Feedback 只追加，不更新
// swagger:model Feedback
type Feedback struct {
	ID        string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    uint              `gorm:"index" json:"userId"`
	Type      string            `gorm:"size:50" json:"type"`
	Message   string            `gorm:"type:text" json:"message"`
	Rating    int               `json:"rating"`
	Context   datatypes.JSONMap `json:"context,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (Feedback) TableName() string {
	return "feedback"
}
