// Package fallback 提供 AI 不可用时使用的静态内容。
// 所有函数都是确定性的，任何输入都能得到可用结果。
package fallback

import (
	_ "embed"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"skillpath_backend/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed data/domains.yaml
var domainsYAML []byte

const DefaultDomainKey = "default"

// Domain 一个领域的兜底数据
type Domain struct {
	Key           string               `yaml:"key"`
	Name          string               `yaml:"name"`
	Keywords      []string             `yaml:"keywords"`
	Overview      string               `yaml:"overview"`
	Demand        model.IndustryDemand `yaml:"demand"`
	EstimatedTime string               `yaml:"estimatedTime"`
	Careers       []string             `yaml:"careers"`
	Tools         []string             `yaml:"tools"`
	Skills        []model.DomainSkill  `yaml:"skills"`
}

type table struct {
	Domains []Domain `yaml:"domains"`
}

var (
	loadOnce sync.Once
	domains  []Domain
	byKey    map[string]*Domain
)

var nonWord = regexp.MustCompile(`[^a-z0-9+#]+`)

func load() {
	loadOnce.Do(func() {
		var t table
		if err := yaml.Unmarshal(domainsYAML, &t); err != nil {
			// 数据随二进制一起编译，解析失败只可能是开发期错误
			panic(fmt.Sprintf("fallback: invalid embedded domains.yaml: %v", err))
		}
		domains = t.Domains
		byKey = make(map[string]*Domain, len(domains))
		for i := range domains {
			byKey[domains[i].Key] = &domains[i]
		}
		if _, ok := byKey[DefaultDomainKey]; !ok {
			panic("fallback: domains.yaml has no default entry")
		}
	})
}

func normalize(s string) string {
	s = nonWord.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(s), " ")
}

// ResolveDomain 按 key 或关键词匹配领域，匹配不到时返回 default
func ResolveDomain(domain string) *Domain {
	load()

	norm := normalize(domain)
	if d, ok := byKey[strings.ReplaceAll(norm, " ", "-")]; ok {
		return d
	}

	padded := " " + norm + " "
	var best *Domain
	bestScore := 0
	for i := range domains {
		d := &domains[i]
		score := 0
		for _, kw := range d.Keywords {
			if k := normalize(kw); k != "" && strings.Contains(padded, " "+k+" ") {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	if best == nil {
		return byKey[DefaultDomainKey]
	}
	return best
}

// GetDomainFallbackSkills 返回领域的兜底技能列表，结果永不为空
func GetDomainFallbackSkills(domain string) []model.DomainSkill {
	d := ResolveDomain(domain)
	skills := cloneSkills(d.Skills)
	if len(skills) == 0 {
		skills = cloneSkills(byKey[DefaultDomainKey].Skills)
	}
	return skills
}

func cloneSkills(in []model.DomainSkill) []model.DomainSkill {
	out := make([]model.DomainSkill, len(in))
	for i, s := range in {
		s.Resources = append([]model.PathResource(nil), s.Resources...)
		out[i] = s
	}
	return out
}

// DomainAnalysis 构造领域分析兜底结果
func DomainAnalysis(domain, level string) *model.DomainAnalysis {
	d := ResolveDomain(domain)
	level = NormalizeLevel(level)
	skills := GetDomainFallbackSkills(domain)
	demand := d.Demand

	return &model.DomainAnalysis{
		Domain:              displayDomain(domain, d),
		Level:               level,
		Overview:            d.Overview,
		Skills:              skills,
		LearningPath:        Phases(skills),
		CareerOpportunities: append([]string(nil), d.Careers...),
		Tools:               append([]string(nil), d.Tools...),
		IndustryDemand:      &demand,
		EstimatedTime:       d.EstimatedTime,
		Source:              "fallback",
	}
}

func displayDomain(input string, d *Domain) string {
	if s := strings.TrimSpace(input); s != "" {
		return s
	}
	return d.Name
}

// Phases 按技能难度分成基础、进阶、高级三个阶段
func Phases(skills []model.DomainSkill) []model.LearningPhase {
	groups := []struct {
		level, phase, duration string
	}{
		{model.LevelBeginner, "Foundations", "4-6 weeks"},
		{model.LevelIntermediate, "Core Skills", "6-8 weeks"},
		{model.LevelAdvanced, "Specialisation", "4-8 weeks"},
	}
	var out []model.LearningPhase
	for _, g := range groups {
		var focus []string
		for _, s := range skills {
			if s.Level == g.level {
				focus = append(focus, s.Name)
			}
		}
		if len(focus) > 0 {
			out = append(out, model.LearningPhase{Phase: g.phase, Duration: g.duration, Focus: focus})
		}
	}
	return out
}

// NormalizeLevel 未知的等级按 beginner 处理
func NormalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case model.LevelIntermediate:
		return model.LevelIntermediate
	case model.LevelAdvanced, "expert":
		return model.LevelAdvanced
	default:
		return model.LevelBeginner
	}
}

// SkillResources 构造技能资源兜底结果，已知技能优先使用表中的资源
func SkillResources(skill, level string) *model.SkillResources {
	level = NormalizeLevel(level)
	name := strings.TrimSpace(skill)
	if name == "" {
		name = "General Skills"
	}

	var resources []model.PathResource
	if s := findSkill(name); s != nil {
		resources = append(resources, s.Resources...)
	}
	resources = append(resources, searchResources(name)...)

	return &model.SkillResources{
		Skill:     name,
		Level:     level,
		Resources: resources,
		PracticeProjects: []string{
			fmt.Sprintf("Build a small project that uses %s end to end", name),
			fmt.Sprintf("Recreate an existing %s example from the documentation and extend it", name),
			fmt.Sprintf("Write a short article explaining a %s concept you learned", name),
		},
		Tips: []string{
			"Study in focused sessions of 25-50 minutes",
			"Practice every concept with a small exercise",
			"Review your notes at the end of each week",
		},
		Source: "fallback",
	}
}

func findSkill(name string) *model.DomainSkill {
	load()
	n := normalize(name)
	for i := range domains {
		for j := range domains[i].Skills {
			if normalize(domains[i].Skills[j].Name) == n {
				return &domains[i].Skills[j]
			}
		}
	}
	return nil
}

func searchResources(skill string) []model.PathResource {
	q := url.QueryEscape(skill)
	return []model.PathResource{
		{Title: skill + " on freeCodeCamp", URL: "https://www.freecodecamp.org/news/search/?query=" + q, Type: "article"},
		{Title: skill + " video tutorials", URL: "https://www.youtube.com/results?search_query=" + q + "+tutorial", Type: "video"},
		{Title: skill + " courses on Coursera", URL: "https://www.coursera.org/search?query=" + q, Type: "course"},
	}
}
