package model

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

const (
	PathSourceManual    = "manual"
	PathSourceDailyPlan = "daily-plan"
)

// PathResource 模块下的学习资源
type PathResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// PathModule 学习路径中的一个模块，daily-plan 生成的路径每天对应一个模块
type PathModule struct {
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Day              int            `json:"day,omitempty"`
	Skill            string         `json:"skill,omitempty"`
	Tasks            []string       `json:"tasks,omitempty"`
	Resources        []PathResource `json:"resources"`
	EstimatedMinutes int            `json:"estimatedMinutes,omitempty"`
	Completed        bool           `json:"completed"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
}

// swagger:model LearningPath
type LearningPath struct {
	UUIDBase
	UserID               uint                            `gorm:"index;not null" json:"userId"`
	Title                string                          `gorm:"size:255;not null" json:"title"`
	Description          string                          `gorm:"type:text" json:"description"`
	Domain               string                          `gorm:"size:100;index" json:"domain"`
	Difficulty           string                          `gorm:"size:32;default:'beginner'" json:"difficulty"`
	Source               string                          `gorm:"size:32;default:'manual'" json:"source"`
	Modules              datatypes.JSONSlice[PathModule] `json:"modules"`
	Tags                 datatypes.JSONSlice[string]     `json:"tags"`
	IsCompleted          bool                            `gorm:"default:false" json:"isCompleted"`
	CompletionPercentage int                             `gorm:"default:0" json:"completionPercentage"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

// CompletedModules 已完成的模块数
func (p *LearningPath) CompletedModules() int {
	n := 0
	for _, m := range p.Modules {
		if m.Completed {
			n++
		}
	}
	return n
}

// Recalculate 根据模块完成情况刷新完成百分比和完成标记
func (p *LearningPath) Recalculate() {
	if len(p.Modules) == 0 {
		p.CompletionPercentage = 0
		if p.IsCompleted {
			p.CompletionPercentage = 100
		}
		return
	}
	pct := int(math.Round(float64(p.CompletedModules()) / float64(len(p.Modules)) * 100))
	p.CompletionPercentage = pct
	p.IsCompleted = pct >= 100
}
