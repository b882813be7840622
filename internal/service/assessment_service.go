package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"skillpath_backend/internal/fallback"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 30
	PassingScore         = 70
	historyLimit         = 10
)

var ErrAnswersMismatch = errors.New("answers must match the number of questions")

type GenerateAssessmentRequest struct {
	Domain        string `json:"domain" binding:"required"`
	Level         string `json:"level"`
	QuestionCount int    `json:"questionCount"`
}

type AnalyzeAssessmentRequest struct {
	Domain    string           `json:"domain" binding:"required"`
	Level     string           `json:"level"`
	Questions []model.Question `json:"questions" binding:"required,min=1"`
	Answers   []int            `json:"answers" binding:"required"`
	TimeTaken int              `json:"timeTaken"` // 秒
}

type AssessmentAnalysis struct {
	Result   *model.AssessmentResult   `json:"result"`
	Feedback *model.AssessmentFeedback `json:"feedback"`
}

type AssessmentService struct {
	Repo     *repository.AssessmentRepository
	UserRepo *repository.UserRepository
	Content  *ContentGenerator
	Now      func() time.Time
}

func NewAssessmentService(repo *repository.AssessmentRepository, userRepo *repository.UserRepository, content *ContentGenerator) *AssessmentService {
	return &AssessmentService{
		Repo:     repo,
		UserRepo: userRepo,
		Content:  content,
		Now:      time.Now,
	}
}

// NormalizeQuestionCount 默认 10，限制在 1..30
func NormalizeQuestionCount(n int) int {
	switch {
	case n <= 0:
		return DefaultQuestionCount
	case n > MaxQuestionCount:
		return MaxQuestionCount
	default:
		return n
	}
}

func pointsFor(difficulty string) int {
	switch difficulty {
	case model.DifficultyHard:
		return 3
	case model.DifficultyMedium:
		return 2
	default:
		return 1
	}
}

// Grade 百分制成绩对应的等级
func Grade(percentage int) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

// SkillLevel 根据测评成绩推断技能等级
func SkillLevel(percentage int) string {
	switch {
	case percentage >= 80:
		return model.LevelAdvanced
	case percentage >= 60:
		return model.LevelIntermediate
	default:
		return model.LevelBeginner
	}
}

// Generate 生成测评题目，AI 失败时直接返回错误
func (s *AssessmentService) Generate(ctx context.Context, req GenerateAssessmentRequest) (*model.Assessment, error) {
	req.Domain = strings.TrimSpace(req.Domain)
	if req.Domain == "" {
		return nil, util.ErrDomainRequired
	}
	level := fallback.NormalizeLevel(req.Level)
	count := NormalizeQuestionCount(req.QuestionCount)

	questions, err := s.Content.GenerateQuestions(ctx, req.Domain, level, count)
	if err != nil {
		return nil, err
	}

	total := 0
	for i := range questions {
		q := &questions[i]
		q.ID = i + 1
		switch q.Difficulty {
		case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		default:
			q.Difficulty = model.DifficultyMedium
		}
		q.Points = pointsFor(q.Difficulty)
		total += q.Points
	}

	return &model.Assessment{
		Domain:         req.Domain,
		Level:          level,
		Questions:      questions,
		TotalQuestions: len(questions),
		TotalPoints:    total,
		TimeLimit:      int(math.Ceil(float64(len(questions)) * 1.5)),
		PassingScore:   PassingScore,
	}, nil
}

// GradeAnswers 本地评分，不依赖 AI
func GradeAnswers(questions []model.Question, answers []int) (model.AssessmentResult, []string) {
	result := model.AssessmentResult{TotalQuestions: len(questions)}
	var missed []string
	details := make([]model.QuestionResult, 0, len(questions))

	for i, q := range questions {
		points := q.Points
		if points <= 0 {
			points = pointsFor(q.Difficulty)
		}
		answer := -1
		if i < len(answers) {
			answer = answers[i]
		}
		correct := answer == q.CorrectAnswer
		result.TotalPoints += points
		if correct {
			result.Score += points
			result.CorrectAnswers++
		} else {
			topic := q.Skill
			if topic == "" {
				topic = q.Question
			}
			missed = append(missed, topic)
		}
		details = append(details, model.QuestionResult{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			UserAnswer:    answer,
			IsCorrect:     correct,
			Points:        points,
			Difficulty:    q.Difficulty,
			Explanation:   q.Explanation,
		})
	}

	if result.TotalPoints > 0 {
		result.Percentage = int(math.Round(float64(result.Score) / float64(result.TotalPoints) * 100))
	}
	result.Grade = Grade(result.Percentage)
	result.Passed = result.Percentage >= PassingScore
	result.Questions = details
	return result, missed
}

// Analyze 评分、记录历史、更新技能进度，并附上 AI 点评（失败时使用规则点评）
func (s *AssessmentService) Analyze(ctx context.Context, userID uint, req AnalyzeAssessmentRequest) (*AssessmentAnalysis, error) {
	req.Domain = strings.TrimSpace(req.Domain)
	if req.Domain == "" {
		return nil, util.ErrDomainRequired
	}
	if len(req.Answers) != len(req.Questions) {
		return nil, ErrAnswersMismatch
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	level := fallback.NormalizeLevel(req.Level)
	result, missed := GradeAnswers(req.Questions, req.Answers)
	result.UserID = userID
	result.Domain = req.Domain
	result.Level = level
	result.TimeTaken = req.TimeTaken
	result.CompletedAt = s.Now()

	if err := s.Repo.CreateResult(&result); err != nil {
		return nil, fmt.Errorf("save assessment result: %w", err)
	}

	skills := user.SkillsProgressMap()
	key := strings.ToLower(strings.TrimSpace(req.Domain))
	sp := skills[key]
	sp.Level = SkillLevel(result.Percentage)
	sp.LastScore = result.Percentage
	sp.Count++
	sp.UpdatedAt = result.CompletedAt
	skills[key] = sp
	if err := s.UserRepo.UpdateSkillsProgress(userID, skills); err != nil {
		logger.Log.Error("Failed to update skills progress", zap.Uint("userID", userID), zap.Error(err))
	}

	feedback, err := s.Content.AssessmentFeedback(ctx, req.Domain, level, result.Percentage, result.Grade, missed)
	if err != nil {
		logger.Log.Warn("AI assessment feedback unavailable, using rule-based feedback",
			zap.String("domain", req.Domain), zap.Error(err))
		fb := fallback.AssessmentFeedback(req.Domain, result.Percentage, result.Grade, missed)
		feedback = &fb
	}

	return &AssessmentAnalysis{Result: &result, Feedback: feedback}, nil
}

// History 最近 10 次测评
func (s *AssessmentService) History(userID uint) ([]model.AssessmentResult, error) {
	return s.Repo.ListRecent(userID, historyLimit)
}

func (s *AssessmentService) Analytics(userID uint) (*model.AssessmentAnalytics, error) {
	results, err := s.Repo.ListAll(userID)
	if err != nil {
		return nil, err
	}
	return SummarizeAssessments(results), nil
}

// SummarizeAssessments results 需按完成时间升序
func SummarizeAssessments(results []model.AssessmentResult) *model.AssessmentAnalytics {
	a := &model.AssessmentAnalytics{
		TotalAssessments:  len(results),
		Trend:             "stable",
		GradeDistribution: map[string]int{"A": 0, "B": 0, "C": 0, "D": 0, "F": 0},
		Skills:            map[string]model.SkillStat{},
		RecentResults:     []model.AssessmentResult{},
	}
	if len(results) == 0 {
		return a
	}

	sum, passed := 0, 0
	type acc struct {
		sum, n, best int
	}
	perDomain := map[string]*acc{}
	for _, r := range results {
		sum += r.Percentage
		if r.Percentage > a.BestScore {
			a.BestScore = r.Percentage
		}
		if r.Passed {
			passed++
		}
		a.GradeDistribution[r.Grade]++

		key := strings.ToLower(r.Domain)
		d := perDomain[key]
		if d == nil {
			d = &acc{}
			perDomain[key] = d
		}
		d.sum += r.Percentage
		d.n++
		if r.Percentage > d.best {
			d.best = r.Percentage
		}
	}

	n := len(results)
	a.AverageScore = round1(float64(sum) / float64(n))
	a.LatestScore = results[n-1].Percentage
	a.PassRate = round1(float64(passed) / float64(n) * 100)

	for name, d := range perDomain {
		avg := float64(d.sum) / float64(d.n)
		a.Skills[name] = model.SkillStat{
			Attempts:     d.n,
			AverageScore: round1(avg),
			BestScore:    d.best,
			Level:        SkillLevel(int(math.Round(avg))),
		}
	}

	// 前后两半的平均分相差超过 5 分才算有趋势
	if n >= 2 {
		half := n / 2
		older := meanPercentage(results[:half])
		newer := meanPercentage(results[n-half:])
		switch {
		case newer-older > 5:
			a.Trend = "improving"
		case older-newer > 5:
			a.Trend = "declining"
		}
	}

	start := n - 5
	if start < 0 {
		start = 0
	}
	for i := n - 1; i >= start; i-- {
		r := results[i]
		r.Questions = nil
		a.RecentResults = append(a.RecentResults, r)
	}
	return a
}

func meanPercentage(rs []model.AssessmentResult) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Percentage
	}
	return float64(sum) / float64(len(rs))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
