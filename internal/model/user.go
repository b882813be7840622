package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// SkillProgress 单项技能的测评进度
type SkillProgress struct {
	Level     string    `json:"level"`
	LastScore int       `json:"lastScore"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserProfile 用户画像，嵌入在 users 表中
type UserProfile struct {
	Skills          datatypes.JSONSlice[string] `json:"skills"`
	ExperienceLevel string                      `gorm:"size:32;default:'beginner'" json:"experienceLevel"`
	Goals           datatypes.JSONSlice[string] `json:"goals"`
	Bio             string                      `gorm:"size:500" json:"bio"`
}

// swagger:model User
type User struct {
	BaseModel
	Name           string                                          `gorm:"size:100;not null" json:"name"`
	Email          string                                          `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password       string                                          `gorm:"size:100;not null" json:"-"`
	Profile        UserProfile                                     `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	SkillsProgress datatypes.JSONType[map[string]SkillProgress] `json:"skillsProgress"`
	LastActiveAt   *time.Time                                      `json:"lastActiveAt,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// SkillsProgressMap 返回可修改的技能进度副本
func (u *User) SkillsProgressMap() map[string]SkillProgress {
	out := make(map[string]SkillProgress)
	for k, v := range u.SkillsProgress.Data() {
		out[k] = v
	}
	return out
}
