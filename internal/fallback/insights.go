package fallback

import (
	"fmt"

	"skillpath_backend/internal/model"
)

// InsightInput 规则化建议所需的统计值
type InsightInput struct {
	TotalStudyTime   float64
	AverageScore     int
	CoursesCompleted int
	TopSkills        []string
}

// Insights 基于学习时长、平均分和完成课程数的规则化建议
func Insights(in InsightInput) model.Insights {
	var out model.Insights

	switch {
	case in.TotalStudyTime >= 20:
		out.Strengths = append(out.Strengths, fmt.Sprintf("Dedicated learner with %.1f hours of study", in.TotalStudyTime))
	case in.TotalStudyTime >= 5:
		out.Strengths = append(out.Strengths, "Building a steady study habit")
	}
	if in.AverageScore >= 80 {
		out.Strengths = append(out.Strengths, fmt.Sprintf("Strong results with an average score of %d%%", in.AverageScore))
	}
	if in.CoursesCompleted > 0 {
		out.Strengths = append(out.Strengths, fmt.Sprintf("Completed %d course(s)", in.CoursesCompleted))
	}
	if len(out.Strengths) == 0 {
		out.Strengths = []string{"Taking the first steps on your learning journey"}
	}

	if in.TotalStudyTime < 5 {
		out.Improvements = append(out.Improvements, "Schedule regular study sessions to build momentum")
	}
	if in.AverageScore < 70 {
		out.Improvements = append(out.Improvements, "Review fundamentals to raise your scores")
	}
	if in.CoursesCompleted == 0 {
		out.Improvements = append(out.Improvements, "Focus on finishing one learning path before starting another")
	}
	if len(out.Improvements) == 0 {
		out.Improvements = []string{"Challenge yourself with more advanced material"}
	}

	if len(in.TopSkills) > 0 {
		out.Recommendations = append(out.Recommendations, fmt.Sprintf("Build a project that combines %s", joinTop(in.TopSkills, 2)))
	}
	out.Recommendations = append(out.Recommendations,
		"Take an assessment to measure your progress",
		"Generate a daily plan to keep a consistent routine",
	)

	if in.CoursesCompleted == 0 {
		out.NextGoals = append(out.NextGoals, "Complete your first learning path")
	}
	if in.TotalStudyTime < 20 {
		out.NextGoals = append(out.NextGoals, "Reach 20 hours of total study time")
	}
	if in.AverageScore < 85 {
		out.NextGoals = append(out.NextGoals, "Raise your average score to 85%")
	}
	if len(out.NextGoals) == 0 {
		out.NextGoals = []string{"Earn a certificate in a new domain"}
	}

	return out
}

func joinTop(skills []string, n int) string {
	if len(skills) < n {
		n = len(skills)
	}
	switch n {
	case 1:
		return skills[0]
	default:
		return skills[0] + " and " + skills[1]
	}
}

// AssessmentFeedback 规则化的测评点评
func AssessmentFeedback(domain string, percentage int, grade string, missed []string) model.AssessmentFeedback {
	fb := model.AssessmentFeedback{Source: "fallback"}

	switch {
	case percentage >= 90:
		fb.Summary = fmt.Sprintf("Excellent work! You scored %d%% (grade %s) in %s.", percentage, grade, domain)
		fb.Strengths = []string{"Thorough understanding of the material"}
		fb.NextSteps = []string{"Move on to advanced topics", "Consider generating a certificate"}
	case percentage >= 70:
		fb.Summary = fmt.Sprintf("Good job! You passed %s with %d%% (grade %s).", domain, percentage, grade)
		fb.Strengths = []string{"Solid grasp of the core concepts"}
		fb.NextSteps = []string{"Strengthen the topics you missed", "Retake the assessment at a higher level"}
	default:
		fb.Summary = fmt.Sprintf("You scored %d%% (grade %s) in %s. Keep practising and try again.", percentage, grade, domain)
		fb.Strengths = []string{"Completed the assessment and identified gaps"}
		fb.NextSteps = []string{"Review the fundamentals", "Follow a daily plan before retaking the assessment"}
	}

	if len(missed) > 0 {
		for _, m := range missed {
			fb.Weaknesses = append(fb.Weaknesses, "Review: "+m)
		}
	} else {
		fb.Weaknesses = []string{}
	}

	fb.Recommendations = []string{
		fmt.Sprintf("Request skill resources for the %s topics you missed", domain),
		"Practice with short daily exercises",
	}
	return fb
}
