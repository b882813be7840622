package model

// DayProgress 周视图中一天的学习时长
type DayProgress struct {
	Day   string  `json:"day"`
	Hours float64 `json:"hours"`
}

// TopSkill 出现频率最高的技能，Progress 为相对最大频次的 0-100 分值
type TopSkill struct {
	Name     string `json:"name"`
	Progress int    `json:"progress"`
	Count    int    `json:"count"`
}

// ProgressAnalytics 用户学习数据汇总
type ProgressAnalytics struct {
	TotalStudyTime   float64       `json:"totalStudyTime"` // 小时
	CoursesCompleted int           `json:"coursesCompleted"`
	SkillsLearned    int           `json:"skillsLearned"`
	AverageScore     int           `json:"averageScore"`
	WeeklyProgress   []DayProgress `json:"weeklyProgress"`
	TopSkills        []TopSkill    `json:"topSkills"`
	LearningStreak   int           `json:"learningStreak"`
	Rank             string        `json:"rank"`
	Insights         Insights      `json:"insights"`
}

// SkillStat 测评分析中单个领域的统计
type SkillStat struct {
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"averageScore"`
	BestScore    int     `json:"bestScore"`
	Level        string  `json:"level"`
}

// AssessmentAnalytics 测评历史统计
type AssessmentAnalytics struct {
	TotalAssessments  int                  `json:"totalAssessments"`
	AverageScore      float64              `json:"averageScore"`
	BestScore         int                  `json:"bestScore"`
	LatestScore       int                  `json:"latestScore"`
	PassRate          float64              `json:"passRate"`
	Trend             string               `json:"trend"` // improving | declining | stable
	GradeDistribution map[string]int       `json:"gradeDistribution"`
	Skills            map[string]SkillStat `json:"skills"`
	RecentResults     []AssessmentResult   `json:"recentResults"`
}
