package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionResult 单题作答详情
type QuestionResult struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	UserAnswer    int      `json:"userAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	Points        int      `json:"points"`
	Difficulty    string   `json:"difficulty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// AssessmentResult 用户测评历史中的一条记录
// swagger:model AssessmentResult
type AssessmentResult struct {
	UUIDBase
	UserID         uint                                `gorm:"index;not null" json:"userId"`
	Domain         string                              `gorm:"size:100;index" json:"domain"`
	Level          string                              `gorm:"size:32" json:"level"`
	Score          int                                 `json:"score"`
	TotalPoints    int                                 `json:"totalPoints"`
	Percentage     int                                 `json:"percentage"`
	Grade          string                              `gorm:"size:2" json:"grade"`
	Passed         bool                                `json:"passed"`
	TotalQuestions int                                 `json:"totalQuestions"`
	CorrectAnswers int                                 `json:"correctAnswers"`
	TimeTaken      int                                 `json:"timeTaken"` // 秒
	Questions      datatypes.JSONSlice[QuestionResult] `json:"questions"`
	CompletedAt    time.Time                           `gorm:"index" json:"completedAt"`
}

func (AssessmentResult) TableName() string {
	return "assessment_results"
}
