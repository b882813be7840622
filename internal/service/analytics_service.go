package service

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"skillpath_backend/internal/fallback"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	RankExpert       = "Expert"
	RankAdvanced     = "Advanced"
	RankIntermediate = "Intermediate"
	RankNovice       = "Novice"
	RankBeginner     = "Beginner"

	// 完成但没有记录时长的进度按 150 分钟计
	defaultCompletedMinutes = 150
	maxTopSkills            = 5
	minTopSkillProgress     = 25
)

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var placeholderSkills = []model.TopSkill{
	{Name: "Problem Solving", Progress: 60},
	{Name: "Programming Fundamentals", Progress: 45},
	{Name: "Learning Strategy", Progress: 30},
}

// Rank 按加权分数划分等级，下界包含
func Rank(score int) string {
	switch {
	case score >= 50:
		return RankExpert
	case score >= 25:
		return RankAdvanced
	case score >= 10:
		return RankIntermediate
	case score >= 5:
		return RankNovice
	default:
		return RankBeginner
	}
}

// Aggregator 从原始记录计算学习统计，时间和随机抖动可注入
type Aggregator struct {
	Now    func() time.Time
	Jitter func() float64 // [0,2) 小时
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		Now:    time.Now,
		Jitter: func() float64 { return rand.Float64() * 2 },
	}
}

// Aggregate 不含 AI 建议部分
func (a *Aggregator) Aggregate(user *model.User, paths []model.LearningPath, progress []model.Progress) model.ProgressAnalytics {
	now := a.Now()

	minutes := 0
	completedByProgress := 0
	scoreSum := 0.0
	var lastActivity time.Time
	recent := false
	for _, p := range progress {
		if p.Status == model.ProgressStatusCompleted {
			if p.TimeSpent > 0 {
				minutes += p.TimeSpent
			} else {
				minutes += defaultCompletedMinutes
			}
		}
		if p.OverallProgress >= 100 {
			completedByProgress++
		}
		if p.Score != nil {
			scoreSum += *p.Score
		}
		if p.UpdatedAt.After(lastActivity) {
			lastActivity = p.UpdatedAt
		}
		if now.Sub(p.UpdatedAt) <= 7*24*time.Hour {
			recent = true
		}
	}
	// 只统计学习记录，LastActiveAt 在每次请求时都会刷新
	for _, p := range paths {
		if p.UpdatedAt.After(lastActivity) {
			lastActivity = p.UpdatedAt
		}
		for _, m := range p.Modules {
			if m.CompletedAt != nil && m.CompletedAt.After(lastActivity) {
				lastActivity = *m.CompletedAt
			}
		}
	}
	rawHours := float64(minutes) / 60
	totalHours := math.Round(rawHours*10) / 10

	completedPaths := 0
	completedModules, totalModules := 0, 0
	skillSet := make(map[string]struct{})
	counts := make(map[string]int)
	if user != nil {
		for _, s := range user.Profile.Skills {
			skillSet[s] = struct{}{}
			counts[s]++
		}
	}
	for _, p := range paths {
		if p.IsCompleted {
			completedPaths++
			for _, t := range p.Tags {
				skillSet[t] = struct{}{}
			}
		}
		for _, t := range p.Tags {
			counts[t]++
		}
		n := len(p.Modules)
		if n < 1 {
			n = 1
		}
		totalModules += n
		completedModules += p.CompletedModules()
	}

	courses := completedPaths
	if completedByProgress > courses {
		courses = completedByProgress
	}

	average := 0
	if len(progress) > 0 {
		average = int(math.Round(scoreSum / float64(len(progress))))
	} else if totalModules > 0 {
		average = int(math.Round(float64(completedModules) / float64(totalModules) * 100))
	}

	weekly := make([]model.DayProgress, len(weekdays))
	for i, d := range weekdays {
		weekly[i] = model.DayProgress{Day: d}
		if recent {
			weekly[i].Hours = math.Round((totalHours/7+a.Jitter())*10) / 10
		}
	}

	streak := 0
	if !lastActivity.IsZero() {
		days := int(now.Sub(lastActivity).Hours() / 24)
		if days < 0 {
			days = 0
		}
		if s := 7 - days; s > 0 {
			streak = s
		}
	}

	skillsLearned := len(skillSet)
	return model.ProgressAnalytics{
		TotalStudyTime:   totalHours,
		CoursesCompleted: courses,
		SkillsLearned:    skillsLearned,
		AverageScore:     average,
		WeeklyProgress:   weekly,
		TopSkills:        topSkills(counts),
		LearningStreak:   streak,
		Rank:             Rank(courses*3 + skillsLearned*2 + int(math.Floor(rawHours))),
	}
}

func topSkills(counts map[string]int) []model.TopSkill {
	if len(counts) == 0 {
		return append([]model.TopSkill(nil), placeholderSkills...)
	}

	skills := make([]model.TopSkill, 0, len(counts))
	max := 0
	for name, c := range counts {
		skills = append(skills, model.TopSkill{Name: name, Count: c})
		if c > max {
			max = c
		}
	}
	sort.Slice(skills, func(i, j int) bool {
		if skills[i].Count != skills[j].Count {
			return skills[i].Count > skills[j].Count
		}
		return skills[i].Name < skills[j].Name
	})
	if len(skills) > maxTopSkills {
		skills = skills[:maxTopSkills]
	}
	for i := range skills {
		p := int(math.Round(float64(skills[i].Count) / float64(max) * 100))
		if p < minTopSkillProgress {
			p = minTopSkillProgress
		}
		skills[i].Progress = p
	}
	return skills
}

// NewUserAnalytics 读取失败时返回的完整默认数据
func NewUserAnalytics() model.ProgressAnalytics {
	weekly := make([]model.DayProgress, len(weekdays))
	for i, d := range weekdays {
		weekly[i] = model.DayProgress{Day: d}
	}
	return model.ProgressAnalytics{
		WeeklyProgress: weekly,
		TopSkills:      append([]model.TopSkill(nil), placeholderSkills...),
		Rank:           RankBeginner,
		Insights:       fallback.Insights(fallback.InsightInput{}),
	}
}

type AnalyticsService struct {
	UserRepo     *repository.UserRepository
	PathRepo     *repository.LearningPathRepository
	ProgressRepo *repository.ProgressRepository
	Content      *ContentGenerator
	Aggregator   *Aggregator
}

func NewAnalyticsService(
	userRepo *repository.UserRepository,
	pathRepo *repository.LearningPathRepository,
	progressRepo *repository.ProgressRepository,
	content *ContentGenerator,
) *AnalyticsService {
	return &AnalyticsService{
		UserRepo:     userRepo,
		PathRepo:     pathRepo,
		ProgressRepo: progressRepo,
		Content:      content,
		Aggregator:   NewAggregator(),
	}
}

// ProgressAnalytics 从不返回错误：读库失败时返回新用户默认数据，AI 失败时使用规则化建议
func (s *AnalyticsService) ProgressAnalytics(ctx context.Context, userID uint) model.ProgressAnalytics {
	var (
		user     *model.User
		paths    []model.LearningPath
		progress []model.Progress
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.UserRepo.FindByID(userID)
		return err
	})
	g.Go(func() error {
		var err error
		paths, err = s.PathRepo.ListByUser(userID)
		return err
	})
	g.Go(func() error {
		var err error
		progress, err = s.ProgressRepo.ListByUser(userID)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Log.Error("Failed to load analytics data, returning defaults", zap.Uint("userID", userID), zap.Error(err))
		return NewUserAnalytics()
	}

	summary := s.Aggregator.Aggregate(user, paths, progress)

	var names []string
	for _, t := range summary.TopSkills {
		names = append(names, t.Name)
	}
	input := fallback.InsightInput{
		TotalStudyTime:   summary.TotalStudyTime,
		AverageScore:     summary.AverageScore,
		CoursesCompleted: summary.CoursesCompleted,
		TopSkills:        names,
	}

	insights, err := s.Content.Insights(ctx, input, summary.SkillsLearned)
	if err != nil {
		logger.Log.Warn("AI insights unavailable, using rule-based insights", zap.Uint("userID", userID), zap.Error(err))
		summary.Insights = fallback.Insights(input)
	} else {
		summary.Insights = *insights
	}
	return summary
}
