package service

import (
	"fmt"
	"strings"
)

func domainAnalysisPrompt(domain, level string) string {
	return fmt.Sprintf(`Analyze the learning domain "%s" for a learner at the %s level.
Return JSON with this exact structure:
{
  "domain": "%s",
  "level": "%s",
  "overview": "2-3 sentence overview of the domain",
  "skills": [
    {"name": "skill name", "description": "what it covers", "level": "beginner|intermediate|advanced",
     "importance": "critical|high|medium", "estimatedHours": 40,
     "resources": [{"title": "resource title", "url": "https://...", "type": "documentation|course|video|article|practice"}]}
  ],
  "learningPath": [{"phase": "phase name", "duration": "4-6 weeks", "focus": ["skill name"]}],
  "careerOpportunities": ["job title"],
  "tools": ["tool name"],
  "industryDemand": {"level": "high|medium|low", "trends": ["trend"], "salaryRange": "range"},
  "estimatedTime": "time to competency"
}
List 4 to 8 skills ordered from fundamentals to advanced topics.`, domain, level, domain, level)
}

func skillResourcesPrompt(skill, level string) string {
	return fmt.Sprintf(`Recommend learning resources for the skill "%s" at the %s level.
Return JSON:
{
  "skill": "%s",
  "level": "%s",
  "resources": [{"title": "title", "url": "https://...", "type": "documentation|course|video|article|practice"}],
  "practiceProjects": ["project idea"],
  "tips": ["study tip"]
}
Include 4 to 6 free, reputable resources.`, skill, level, skill, level)
}

func dailyPlanPrompt(domain string, skills []string, level string, duration int) string {
	skillText := "the core skills of the domain"
	if len(skills) > 0 {
		skillText = strings.Join(skills, ", ")
	}
	return fmt.Sprintf(`Create a %d-day study plan for "%s" at the %s level covering: %s.
Return JSON:
{
  "dailyTasks": [
    {"day": 1, "title": "title", "description": "what to achieve", "skill": "skill focus",
     "tasks": ["concrete task"], "resources": [{"title": "title", "url": "https://...", "type": "article"}],
     "estimatedMinutes": 60}
  ]
}
The dailyTasks array must contain exactly %d entries with day numbers 1 to %d in order.`,
		duration, domain, level, skillText, duration, duration)
}

func insightsPrompt(studyHours float64, averageScore, coursesCompleted, skillsLearned int, topSkills []string) string {
	return fmt.Sprintf(`A learner has studied %.1f hours, completed %d courses, learned %d skills and has an average score of %d%%.
Their most practised skills are: %s.
Return JSON with personalised advice:
{
  "strengths": ["..."],
  "improvements": ["..."],
  "recommendations": ["..."],
  "nextGoals": ["..."]
}
Give 2 to 4 short items per list.`, studyHours, coursesCompleted, skillsLearned, averageScore, strings.Join(topSkills, ", "))
}

func assessmentPrompt(domain, level string, count int) string {
	return fmt.Sprintf(`Create a %d-question multiple choice assessment for "%s" at the %s level.
Return JSON:
{
  "questions": [
    {"question": "text", "options": ["A", "B", "C", "D"], "correctAnswer": 0,
     "explanation": "why the answer is correct", "difficulty": "easy|medium|hard", "skill": "topic"}
  ]
}
correctAnswer is the zero-based index of the correct option. Mix difficulties.`, count, domain, level)
}

func assessmentFeedbackPrompt(domain, level string, percentage int, grade string, missed []string) string {
	missedText := "none"
	if len(missed) > 0 {
		missedText = strings.Join(missed, "; ")
	}
	return fmt.Sprintf(`A learner scored %d%% (grade %s) on a %s assessment at the %s level.
Questions answered incorrectly: %s.
Return JSON:
{
  "summary": "one paragraph",
  "strengths": ["..."],
  "weaknesses": ["..."],
  "recommendations": ["..."],
  "nextSteps": ["..."]
}`, percentage, grade, domain, level, missedText)
}
