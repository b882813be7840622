package service

import (
	"errors"
	"fmt"
	"time"

	"skillpath_backend/internal/fallback"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"

	"gorm.io/gorm"
)

// CreatePathRequest 手动创建学习路径
type CreatePathRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Domain      string             `json:"domain"`
	Difficulty  string             `json:"difficulty"`
	Modules     []model.PathModule `json:"modules"`
	Tags        []string           `json:"tags"`
}

type LearningPathService struct {
	Repo         *repository.LearningPathRepository
	ProgressRepo *repository.ProgressRepository
}

func NewLearningPathService(repo *repository.LearningPathRepository, progressRepo *repository.ProgressRepository) *LearningPathService {
	return &LearningPathService{
		Repo:         repo,
		ProgressRepo: progressRepo,
	}
}

func (s *LearningPathService) Create(userID uint, req CreatePathRequest) (*model.LearningPath, error) {
	modules := req.Modules
	for i := range modules {
		if modules[i].Resources == nil {
			modules[i].Resources = []model.PathResource{}
		}
		if !modules[i].Completed {
			modules[i].CompletedAt = nil
		}
	}

	path := &model.LearningPath{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Domain:      req.Domain,
		Difficulty:  fallback.NormalizeLevel(req.Difficulty),
		Source:      model.PathSourceManual,
		Modules:     modules,
		Tags:        util.DedupStrings(req.Tags),
	}
	path.Recalculate()

	if err := s.Repo.Create(path); err != nil {
		return nil, err
	}
	return path, nil
}

// CreateFromDailyPlan 把每日计划保存为学习路径，每天一个模块
func (s *LearningPathService) CreateFromDailyPlan(userID uint, plan *model.DailyPlan, skills []string) (*model.LearningPath, error) {
	modules := make([]model.PathModule, 0, len(plan.DailyTasks))
	for _, t := range plan.DailyTasks {
		modules = append(modules, model.PathModule{
			Title:            t.Title,
			Description:      t.Description,
			Day:              t.Day,
			Skill:            t.Skill,
			Tasks:            t.Tasks,
			Resources:        t.Resources,
			EstimatedMinutes: t.EstimatedMinutes,
		})
	}

	tags := util.DedupStrings(skills)
	if len(tags) == 0 {
		for _, m := range modules {
			tags = append(tags, m.Skill)
		}
		tags = util.DedupStrings(tags)
	}

	path := &model.LearningPath{
		UserID:      userID,
		Title:       fmt.Sprintf("%d-day %s plan", plan.Duration, plan.Domain),
		Description: fmt.Sprintf("Daily study plan for %s at the %s level", plan.Domain, plan.Level),
		Domain:      plan.Domain,
		Difficulty:  plan.Level,
		Source:      model.PathSourceDailyPlan,
		Modules:     modules,
		Tags:        tags,
	}
	path.Recalculate()

	if err := s.Repo.Create(path); err != nil {
		return nil, err
	}
	return path, nil
}

func (s *LearningPathService) List(userID uint) ([]model.LearningPath, error) {
	return s.Repo.ListByUser(userID)
}

func (s *LearningPathService) Get(userID uint, id string) (*model.LearningPath, error) {
	path, err := s.Repo.FindByIDAndUser(id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLearningPathNotFound
	}
	return path, err
}

// CompleteModule 标记模块完成，刷新路径完成度并同步进度记录
func (s *LearningPathService) CompleteModule(userID uint, id string, index int) (*model.LearningPath, error) {
	path, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(path.Modules) {
		return nil, util.ErrModuleNotFound
	}

	now := time.Now()
	modules := append([]model.PathModule(nil), path.Modules...)
	if !modules[index].Completed {
		modules[index].Completed = true
		modules[index].CompletedAt = &now
	}
	path.Modules = modules
	path.Recalculate()

	if err := s.Repo.Update(path); err != nil {
		return nil, err
	}

	taskID := fmt.Sprintf("module-%d", index)
	minutes := modules[index].EstimatedMinutes
	_, err = s.ProgressRepo.Upsert(userID, path.ID, func(p *model.Progress) {
		tasks := p.TasksMap()
		if t, ok := tasks[taskID]; !ok || !t.Completed {
			tasks[taskID] = model.TaskProgress{Completed: true, CompletedAt: &now, TimeSpent: minutes}
			p.TimeSpent += minutes
		}
		p.CompletedTasks = tasksJSON(tasks)
		p.OverallProgress = float64(path.CompletionPercentage)
		p.Status = progressStatus(p.OverallProgress)
	})
	if err != nil {
		return nil, err
	}
	return path, nil
}

func (s *LearningPathService) Delete(userID uint, id string) error {
	n, err := s.Repo.Delete(id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return util.ErrLearningPathNotFound
	}
	return s.ProgressRepo.DeleteByPath(userID, id)
}
