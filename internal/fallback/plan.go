package fallback

import (
	"fmt"
	"strings"

	"skillpath_backend/internal/model"
)

var dailyMinutes = map[string]int{
	model.LevelBeginner:     45,
	model.LevelIntermediate: 60,
	model.LevelAdvanced:     90,
}

// DailyPlan 构造 duration 天的兜底学习计划，技能按天轮换
func DailyPlan(domain string, skills []string, level string, duration int) *model.DailyPlan {
	if duration < 1 {
		duration = 1
	}
	level = NormalizeLevel(level)

	names := cleanSkills(skills)
	if len(names) == 0 {
		for _, s := range GetDomainFallbackSkills(domain) {
			names = append(names, s.Name)
		}
	}

	tasks := make([]model.DailyTask, 0, duration)
	for day := 1; day <= duration; day++ {
		if day == duration && duration > 2 {
			tasks = append(tasks, reviewDay(day, names, level))
			continue
		}
		skill := names[(day-1)%len(names)]
		round := (day - 1) / len(names)
		tasks = append(tasks, skillDay(day, round, skill, level))
	}

	return &model.DailyPlan{
		Domain:     domain,
		Level:      level,
		Duration:   duration,
		DailyTasks: tasks,
		Source:     "fallback",
	}
}

func cleanSkills(skills []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func skillDay(day, round int, skill, level string) model.DailyTask {
	var title, desc string
	var tasks []string
	switch round % 4 {
	case 0:
		title = "Fundamentals of " + skill
		desc = fmt.Sprintf("Get familiar with the core concepts of %s.", skill)
		tasks = []string{
			fmt.Sprintf("Read an introduction to %s", skill),
			"Write down the five most important concepts",
			"Complete one beginner exercise",
		}
	case 1:
		title = "Practice " + skill
		desc = fmt.Sprintf("Reinforce %s through hands-on exercises.", skill)
		tasks = []string{
			fmt.Sprintf("Solve three exercises focused on %s", skill),
			"Review mistakes and note the fixes",
		}
	case 2:
		title = "Build with " + skill
		desc = fmt.Sprintf("Apply %s in a small project.", skill)
		tasks = []string{
			fmt.Sprintf("Plan a mini project that uses %s", skill),
			"Implement the core feature",
			"Share or document the result",
		}
	default:
		title = "Deepen " + skill
		desc = fmt.Sprintf("Explore an advanced %s topic.", skill)
		tasks = []string{
			fmt.Sprintf("Study one advanced %s topic", skill),
			"Refactor earlier work using what you learned",
		}
	}

	return model.DailyTask{
		Day:              day,
		Title:            title,
		Description:      desc,
		Skill:            skill,
		Tasks:            tasks,
		Resources:        resourcesFor(skill),
		EstimatedMinutes: dailyMinutes[level],
	}
}

func reviewDay(day int, skills []string, level string) model.DailyTask {
	return model.DailyTask{
		Day:         day,
		Title:       "Review and reflect",
		Description: "Consolidate everything covered in this plan.",
		Skill:       strings.Join(skills, ", "),
		Tasks: []string{
			"Summarise what you learned for each skill",
			"Redo the exercise you found hardest",
			"Set goals for the next plan",
		},
		Resources:        []model.PathResource{},
		EstimatedMinutes: dailyMinutes[level],
	}
}

func resourcesFor(skill string) []model.PathResource {
	if s := findSkill(skill); s != nil && len(s.Resources) > 0 {
		return append([]model.PathResource(nil), s.Resources...)
	}
	return searchResources(skill)[:1]
}
