package model

// 以下类型是 AI 生成内容与兜底内容共用的结构，不落库

// DomainSkill 领域分析中的一项技能
type DomainSkill struct {
	Name           string         `json:"name" yaml:"name"`
	Description    string         `json:"description" yaml:"description"`
	Level          string         `json:"level" yaml:"level"`
	Importance     string         `json:"importance,omitempty" yaml:"importance"`
	EstimatedHours int            `json:"estimatedHours,omitempty" yaml:"estimatedHours"`
	Resources      []PathResource `json:"resources" yaml:"resources"`
}

type LearningPhase struct {
	Phase    string   `json:"phase"`
	Duration string   `json:"duration"`
	Focus    []string `json:"focus"`
}

type IndustryDemand struct {
	Level       string   `json:"level" yaml:"level"`
	Trends      []string `json:"trends,omitempty" yaml:"trends"`
	SalaryRange string   `json:"salaryRange,omitempty" yaml:"salaryRange"`
}

// DomainAnalysis 领域分析结果
type DomainAnalysis struct {
	Domain              string          `json:"domain"`
	Level               string          `json:"level"`
	Overview            string          `json:"overview"`
	Skills              []DomainSkill   `json:"skills"`
	LearningPath        []LearningPhase `json:"learningPath"`
	CareerOpportunities []string        `json:"careerOpportunities"`
	Tools               []string        `json:"tools"`
	IndustryDemand      *IndustryDemand `json:"industryDemand"`
	EstimatedTime       string          `json:"estimatedTime"`
	Source              string          `json:"source"` // ai | fallback | cache
}

// SkillResources 单项技能的学习资源
type SkillResources struct {
	Skill            string         `json:"skill"`
	Level            string         `json:"level"`
	Resources        []PathResource `json:"resources"`
	PracticeProjects []string       `json:"practiceProjects"`
	Tips             []string       `json:"tips"`
	Source           string         `json:"source"`
}

// DailyTask 每日学习计划中的一天
type DailyTask struct {
	Day              int            `json:"day"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Skill            string         `json:"skill"`
	Tasks            []string       `json:"tasks"`
	Resources        []PathResource `json:"resources"`
	EstimatedMinutes int            `json:"estimatedMinutes"`
}

type DailyPlan struct {
	Domain     string      `json:"domain"`
	Level      string      `json:"level"`
	Duration   int         `json:"duration"`
	DailyTasks []DailyTask `json:"dailyTasks"`
	Source     string      `json:"source"`
}

// Insights 个性化学习建议
type Insights struct {
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`
	NextGoals       []string `json:"nextGoals"`
}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question 测评题目，correctAnswer 为选项下标
type Question struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
	Points        int      `json:"points"`
	Skill         string   `json:"skill,omitempty"`
}

// Assessment 按请求生成的测评，不单独落库
type Assessment struct {
	Domain         string     `json:"domain"`
	Level          string     `json:"level"`
	Questions      []Question `json:"questions"`
	TotalQuestions int        `json:"totalQuestions"`
	TotalPoints    int        `json:"totalPoints"`
	TimeLimit      int        `json:"timeLimit"` // 分钟
	PassingScore   int        `json:"passingScore"`
}

// AssessmentFeedback 测评结果点评
type AssessmentFeedback struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
	NextSteps       []string `json:"nextSteps"`
	Source          string   `json:"source"`
}
