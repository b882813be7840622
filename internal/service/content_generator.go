package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/fallback"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"
	"skillpath_backend/pkg/monitoring"
	"skillpath_backend/pkg/tracing"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ContentKind 生成内容的类型，用于提示词选择和指标标签
type ContentKind string

const (
	KindDomainAnalysis     ContentKind = "domain_analysis"
	KindSkillResources     ContentKind = "skill_resources"
	KindDailyPlan          ContentKind = "daily_plan"
	KindInsights           ContentKind = "insights"
	KindAssessment         ContentKind = "assessment"
	KindAssessmentFeedback ContentKind = "assessment_feedback"
)

const domainAnalysisTTL = 24 * time.Hour

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// ExtractJSON 截取第一个 '{' 到最后一个 '}' 之间的内容并去掉尾随逗号
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object found", util.ErrInvalidAIResponse)
	}
	return trailingComma.ReplaceAllString(text[start:end+1], "$1"), nil
}

// ContentGenerator 封装 AI 调用：构造提示词、有限次重试、解析校验，并在允许时回退到静态内容
type ContentGenerator struct {
	gen   TextGenerator
	cache *repository.CacheRepository

	mu         sync.RWMutex
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
}

func NewContentGenerator(gen TextGenerator, cache *repository.CacheRepository, cfg config.AIConfig) *ContentGenerator {
	g := &ContentGenerator{gen: gen, cache: cache}
	g.ApplyConfig(cfg)
	return g
}

// ApplyConfig 热更新重试参数和模型
func (g *ContentGenerator) ApplyConfig(cfg config.AIConfig) {
	g.mu.Lock()
	g.maxRetries = cfg.MaxRetries
	if g.maxRetries < 0 {
		g.maxRetries = 0
	}
	g.backoff = cfg.RetryBackoff()
	g.timeout = cfg.Timeout()
	g.mu.Unlock()

	if s, ok := g.gen.(modelSetter); ok {
		s.SetModel(cfg.Model)
	}
}

func (g *ContentGenerator) settings() (int, time.Duration, time.Duration) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.maxRetries, g.backoff, g.timeout
}

// generate 调用 AI 并把结果解析到 T，validate 失败与调用失败一样会触发重试
func generate[T any](ctx context.Context, g *ContentGenerator, kind ContentKind, prompt string, validate func(*T) error) (*T, error) {
	if g.gen == nil {
		monitoring.AIGenerations.WithLabelValues(string(kind), "error").Inc()
		return nil, fmt.Errorf("%w: %v", util.ErrContentGeneration, ErrNoAPIKey)
	}

	ctx, span := tracing.StartSpan(ctx, "ai.generate", attribute.String("ai.kind", string(kind)))
	maxRetries, initial, timeout := g.settings()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.Multiplier = 2
	b.RandomizationFactor = 0

	op := func() (*T, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		text, err := g.gen.GenerateText(callCtx, prompt)
		monitoring.AIGenerationDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}

		raw, err := ExtractJSON(text)
		if err != nil {
			return nil, err
		}
		var out T
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, fmt.Errorf("%w: %v", util.ErrInvalidAIResponse, err)
		}
		if validate != nil {
			if err := validate(&out); err != nil {
				return nil, fmt.Errorf("%w: %v", util.ErrInvalidAIResponse, err)
			}
		}
		return &out, nil
	}

	out, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(maxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			monitoring.AIGenerations.WithLabelValues(string(kind), "retry").Inc()
			logger.Log.Warn("AI generation failed, retrying",
				zap.String("kind", string(kind)),
				zap.Duration("backoff", next),
				zap.Error(err))
		}),
	)
	if err != nil {
		monitoring.AIGenerations.WithLabelValues(string(kind), "error").Inc()
		err = fmt.Errorf("%w: %v", util.ErrContentGeneration, err)
		tracing.EndSpan(span, err)
		return nil, err
	}

	monitoring.AIGenerations.WithLabelValues(string(kind), "success").Inc()
	tracing.EndSpan(span, nil)
	return out, nil
}

func (g *ContentGenerator) logFallback(kind ContentKind, err error, fields ...zap.Field) {
	monitoring.AIGenerations.WithLabelValues(string(kind), "fallback").Inc()
	logger.Log.Warn("Using fallback content", append(fields, zap.String("kind", string(kind)), zap.Error(err))...)
}

func domainCacheKey(domain, level string) string {
	return fmt.Sprintf("skillpath:domain_analysis:%s:%s", strings.ToLower(strings.TrimSpace(domain)), level)
}

// AnalyzeDomain 失败时返回领域兜底数据，不会返回错误
func (g *ContentGenerator) AnalyzeDomain(ctx context.Context, domain, level string) *model.DomainAnalysis {
	level = fallback.NormalizeLevel(level)
	key := domainCacheKey(domain, level)

	var cached model.DomainAnalysis
	if hit, err := g.cache.GetJSON(ctx, key, &cached); err != nil {
		logger.Log.Warn("Domain analysis cache read failed", zap.Error(err))
	} else if hit {
		cached.Source = "cache"
		return &cached
	}

	analysis, err := generate(ctx, g, KindDomainAnalysis, domainAnalysisPrompt(domain, level), func(a *model.DomainAnalysis) error {
		return normalizeDomainAnalysis(a, domain, level)
	})
	if err != nil {
		g.logFallback(KindDomainAnalysis, err, zap.String("domain", domain))
		return fallback.DomainAnalysis(domain, level)
	}

	analysis.Source = "ai"
	if err := g.cache.SetJSON(ctx, key, analysis, domainAnalysisTTL); err != nil {
		logger.Log.Warn("Domain analysis cache write failed", zap.Error(err))
	}
	return analysis
}

func normalizeDomainAnalysis(a *model.DomainAnalysis, domain, level string) error {
	var skills []model.DomainSkill
	for _, s := range a.Skills {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		if s.Level == "" {
			s.Level = level
		}
		if s.Description == "" {
			s.Description = s.Name
		}
		if s.Resources == nil {
			s.Resources = []model.PathResource{}
		}
		skills = append(skills, s)
	}
	if len(skills) == 0 {
		return fmt.Errorf("skills missing")
	}
	a.Skills = skills

	if a.Domain == "" {
		a.Domain = domain
	}
	if a.Level == "" {
		a.Level = level
	}
	if a.IndustryDemand == nil || a.IndustryDemand.Level == "" {
		a.IndustryDemand = &model.IndustryDemand{Level: "medium"}
	}
	if len(a.LearningPath) == 0 {
		a.LearningPath = fallback.Phases(a.Skills)
	}
	if a.CareerOpportunities == nil {
		a.CareerOpportunities = []string{}
	}
	if a.Tools == nil {
		a.Tools = []string{}
	}
	return nil
}

// SkillResources 失败时返回兜底资源
func (g *ContentGenerator) SkillResources(ctx context.Context, skill, level string) *model.SkillResources {
	level = fallback.NormalizeLevel(level)
	res, err := generate(ctx, g, KindSkillResources, skillResourcesPrompt(skill, level), func(r *model.SkillResources) error {
		var valid []model.PathResource
		for _, item := range r.Resources {
			if item.Title != "" && item.URL != "" {
				valid = append(valid, item)
			}
		}
		if len(valid) == 0 {
			return fmt.Errorf("resources missing")
		}
		r.Resources = valid
		if r.Skill == "" {
			r.Skill = skill
		}
		if r.Level == "" {
			r.Level = level
		}
		if r.PracticeProjects == nil {
			r.PracticeProjects = []string{}
		}
		if r.Tips == nil {
			r.Tips = []string{}
		}
		return nil
	})
	if err != nil {
		g.logFallback(KindSkillResources, err, zap.String("skill", skill))
		return fallback.SkillResources(skill, level)
	}
	res.Source = "ai"
	return res
}

const (
	DefaultPlanDuration = 7
	MaxPlanDuration     = 90
)

// NormalizeDuration 默认 7 天，限制在 1..90
func NormalizeDuration(d int) int {
	switch {
	case d <= 0:
		return DefaultPlanDuration
	case d > MaxPlanDuration:
		return MaxPlanDuration
	default:
		return d
	}
}

// DailyPlan 结果总是恰好 duration 天，AI 返回的天数不足时用兜底计划补齐
func (g *ContentGenerator) DailyPlan(ctx context.Context, domain string, skills []string, level string, duration int) *model.DailyPlan {
	level = fallback.NormalizeLevel(level)
	skills = util.DedupStrings(skills)
	duration = NormalizeDuration(duration)

	plan, err := generate(ctx, g, KindDailyPlan, dailyPlanPrompt(domain, skills, level, duration), func(p *model.DailyPlan) error {
		if len(p.DailyTasks) == 0 {
			return fmt.Errorf("dailyTasks missing")
		}
		return nil
	})
	if err != nil {
		g.logFallback(KindDailyPlan, err, zap.String("domain", domain))
		return fallback.DailyPlan(domain, skills, level, duration)
	}

	plan.Domain = domain
	plan.Level = level
	plan.Duration = duration
	plan.DailyTasks = fitDays(plan.DailyTasks, fallback.DailyPlan(domain, skills, level, duration).DailyTasks, duration)
	plan.Source = "ai"
	return plan
}

// fitDays 截断或补齐到 duration 天，并按顺序重写 day
func fitDays(tasks, filler []model.DailyTask, duration int) []model.DailyTask {
	out := make([]model.DailyTask, 0, duration)
	for _, t := range tasks {
		if len(out) == duration {
			break
		}
		out = append(out, t)
	}
	for i := len(out); i < duration; i++ {
		out = append(out, filler[i])
	}
	for i := range out {
		out[i].Day = i + 1
		if out[i].Tasks == nil {
			out[i].Tasks = []string{}
		}
		if out[i].Resources == nil {
			out[i].Resources = []model.PathResource{}
		}
	}
	return out
}

// Insights 没有兜底，失败时返回错误
func (g *ContentGenerator) Insights(ctx context.Context, in fallback.InsightInput, skillsLearned int) (*model.Insights, error) {
	prompt := insightsPrompt(in.TotalStudyTime, in.AverageScore, in.CoursesCompleted, skillsLearned, in.TopSkills)
	return generate(ctx, g, KindInsights, prompt, func(i *model.Insights) error {
		if len(i.Strengths)+len(i.Improvements)+len(i.Recommendations)+len(i.NextGoals) == 0 {
			return fmt.Errorf("insights empty")
		}
		rules := fallback.Insights(in)
		if len(i.Strengths) == 0 {
			i.Strengths = rules.Strengths
		}
		if len(i.Improvements) == 0 {
			i.Improvements = rules.Improvements
		}
		if len(i.Recommendations) == 0 {
			i.Recommendations = rules.Recommendations
		}
		if len(i.NextGoals) == 0 {
			i.NextGoals = rules.NextGoals
		}
		return nil
	})
}

// GenerateQuestions 没有兜底，失败时返回错误；无效题目会被丢弃
func (g *ContentGenerator) GenerateQuestions(ctx context.Context, domain, level string, count int) ([]model.Question, error) {
	type payload struct {
		Questions []model.Question `json:"questions"`
	}
	p, err := generate(ctx, g, KindAssessment, assessmentPrompt(domain, level, count), func(p *payload) error {
		var valid []model.Question
		for _, q := range p.Questions {
			if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
				continue
			}
			if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
				continue
			}
			valid = append(valid, q)
		}
		if len(valid) == 0 {
			return fmt.Errorf("no valid questions")
		}
		if len(valid) > count {
			valid = valid[:count]
		}
		p.Questions = valid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Questions, nil
}

// AssessmentFeedback 没有兜底，失败时返回错误
func (g *ContentGenerator) AssessmentFeedback(ctx context.Context, domain, level string, percentage int, grade string, missed []string) (*model.AssessmentFeedback, error) {
	fb, err := generate(ctx, g, KindAssessmentFeedback, assessmentFeedbackPrompt(domain, level, percentage, grade, missed), func(f *model.AssessmentFeedback) error {
		if strings.TrimSpace(f.Summary) == "" {
			return fmt.Errorf("summary missing")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fb.Source = "ai"
	return fb, nil
}
