package service

import (
	"errors"
	"math"
	"strings"
	"time"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProgressUpdate 进度更新请求；只带 taskId 的旧版请求归并到 legacy 记录
type ProgressUpdate struct {
	LearningPathID  string   `json:"learningPathId"`
	TaskID          string   `json:"taskId"`
	Completed       *bool    `json:"completed"`
	TimeSpent       int      `json:"timeSpent"`
	OverallProgress *float64 `json:"overallProgress"`
	Score           *float64 `json:"score"`
}

var ErrProgressKeyMissing = errors.New("learningPathId or taskId is required")

type ProgressService struct {
	Repo *repository.ProgressRepository
}

func NewProgressService(repo *repository.ProgressRepository) *ProgressService {
	return &ProgressService{Repo: repo}
}

func tasksJSON(m map[string]model.TaskProgress) datatypes.JSONType[map[string]model.TaskProgress] {
	return datatypes.NewJSONType(m)
}

// ClampPercent 把百分比限制在 [0,100]
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func progressStatus(overall float64) string {
	if overall >= 100 {
		return model.ProgressStatusCompleted
	}
	return model.ProgressStatusInProgress
}

// Update 以 (user, learningPathId) 为键 upsert 进度
func (s *ProgressService) Update(userID uint, req ProgressUpdate) (*model.Progress, error) {
	pathID := strings.TrimSpace(req.LearningPathID)
	taskID := strings.TrimSpace(req.TaskID)
	if pathID == "" {
		if taskID == "" {
			return nil, ErrProgressKeyMissing
		}
		pathID = model.LegacyProgressKey
	}

	now := time.Now()
	return s.Repo.Upsert(userID, pathID, func(p *model.Progress) {
		if taskID != "" {
			tasks := p.TasksMap()
			t := tasks[taskID]
			completed := true
			if req.Completed != nil {
				completed = *req.Completed
			}
			t.Completed = completed
			if completed && t.CompletedAt == nil {
				t.CompletedAt = &now
			} else if !completed {
				t.CompletedAt = nil
			}
			if req.TimeSpent > 0 {
				t.TimeSpent += req.TimeSpent
			}
			tasks[taskID] = t
			p.CompletedTasks = tasksJSON(tasks)
		}
		if req.TimeSpent > 0 {
			p.TimeSpent += req.TimeSpent
		}
		if req.OverallProgress != nil {
			p.OverallProgress = ClampPercent(*req.OverallProgress)
		}
		if req.Score != nil {
			score := ClampPercent(*req.Score)
			p.Score = &score
		}
		p.Status = progressStatus(p.OverallProgress)
	})
}

func (s *ProgressService) List(userID uint) ([]model.Progress, error) {
	return s.Repo.ListByUser(userID)
}

func (s *ProgressService) Get(userID uint, learningPathID string) (*model.Progress, error) {
	p, err := s.Repo.FindByUserAndPath(userID, learningPathID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProgressNotFound
	}
	return p, err
}
