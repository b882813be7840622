package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"skillpath_backend/internal/fallback"
	"skillpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, false},
		{"markdown fence", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"trailing commas", `{"a":[1,2,],"b":{"c":3,},}`, `{"a":[1,2],"b":{"c":3}}`, false},
		{"leading prose", `Here you go: {"a":1} hope it helps`, `{"a":1}`, false},
		{"no object", `sorry, I cannot help`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, util.ErrInvalidAIResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyzeDomainFallsBackWhenAIFails(t *testing.T) {
	gen := failingGenerator()
	g := newTestContentGenerator(gen)

	analysis := g.AnalyzeDomain(context.Background(), "frontend", "beginner")

	require.NotNil(t, analysis)
	assert.Equal(t, "fallback", analysis.Source)
	assert.Equal(t, fallback.GetDomainFallbackSkills("frontend"), analysis.Skills)
	// 1 次调用 + 2 次重试
	assert.Equal(t, int32(3), gen.calls.Load())
}

func TestAnalyzeDomainWithoutGenerator(t *testing.T) {
	g := newTestContentGenerator(nil)

	analysis := g.AnalyzeDomain(context.Background(), "devops", "")

	assert.Equal(t, "fallback", analysis.Source)
	assert.NotEmpty(t, analysis.Skills)
}

func TestAnalyzeDomainRetriesThenSucceeds(t *testing.T) {
	gen := &fakeGenerator{
		errs:      []error{errUpstream, nil},
		responses: []string{"", `{"skills":[{"name":"Go","description":"The Go language",},],}`},
	}
	g := newTestContentGenerator(gen)

	analysis := g.AnalyzeDomain(context.Background(), "backend", "intermediate")

	assert.Equal(t, "ai", analysis.Source)
	require.Len(t, analysis.Skills, 1)
	assert.Equal(t, "Go", analysis.Skills[0].Name)
	assert.Equal(t, "intermediate", analysis.Skills[0].Level)
	require.NotNil(t, analysis.IndustryDemand)
	assert.Equal(t, "medium", analysis.IndustryDemand.Level)
	assert.NotEmpty(t, analysis.LearningPath)
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestAnalyzeDomainInvalidPayloadFallsBack(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{"skills":[]}`}}
	g := newTestContentGenerator(gen)

	analysis := g.AnalyzeDomain(context.Background(), "mobile", "beginner")

	assert.Equal(t, "fallback", analysis.Source)
	assert.Equal(t, int32(3), gen.calls.Load())
}

func TestDailyPlanConcurrentRequestsKeepExactDays(t *testing.T) {
	g := newTestContentGenerator(failingGenerator())

	var wg sync.WaitGroup
	results := make([][]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plan := g.DailyPlan(context.Background(), "frontend", []string{"HTML", "CSS"}, "beginner", 10)
			for _, d := range plan.DailyTasks {
				results[i] = append(results[i], d.Day)
			}
		}(i)
	}
	wg.Wait()

	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, want, results[0])
	assert.Equal(t, want, results[1])
}

func TestDailyPlanPadsShortAIResponse(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"dailyTasks":[{"day":4,"title":"Day A"},{"day":9,"title":"Day B"}]}`,
	}}
	g := newTestContentGenerator(gen)

	plan := g.DailyPlan(context.Background(), "backend", nil, "beginner", 5)

	assert.Equal(t, "ai", plan.Source)
	require.Len(t, plan.DailyTasks, 5)
	assert.Equal(t, "Day A", plan.DailyTasks[0].Title)
	assert.Equal(t, "Day B", plan.DailyTasks[1].Title)
	for i, d := range plan.DailyTasks {
		assert.Equal(t, i+1, d.Day)
		assert.NotNil(t, d.Tasks)
	}
}

func TestDailyPlanTruncatesLongAIResponse(t *testing.T) {
	var days string
	for i := 1; i <= 12; i++ {
		if i > 1 {
			days += ","
		}
		days += fmt.Sprintf(`{"day":%d,"title":"T%d"}`, i, i)
	}
	gen := &fakeGenerator{responses: []string{`{"dailyTasks":[` + days + `]}`}}
	g := newTestContentGenerator(gen)

	plan := g.DailyPlan(context.Background(), "backend", nil, "beginner", 3)

	require.Len(t, plan.DailyTasks, 3)
	assert.Equal(t, "T3", plan.DailyTasks[2].Title)
}

func TestNormalizeDuration(t *testing.T) {
	assert.Equal(t, 7, NormalizeDuration(0))
	assert.Equal(t, 7, NormalizeDuration(-3))
	assert.Equal(t, 1, NormalizeDuration(1))
	assert.Equal(t, 90, NormalizeDuration(365))
}

func TestGenerateQuestionsPropagatesError(t *testing.T) {
	g := newTestContentGenerator(failingGenerator())

	_, err := g.GenerateQuestions(context.Background(), "frontend", "beginner", 5)

	assert.True(t, errors.Is(err, util.ErrContentGeneration))
}

func TestGenerateQuestionsDropsInvalid(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{"questions":[
		{"question":"What is HTML?","options":["Markup","Database"],"correctAnswer":0,"difficulty":"easy"},
		{"question":"","options":["a","b"],"correctAnswer":0},
		{"question":"Out of range","options":["a","b"],"correctAnswer":5},
		{"question":"One option","options":["a"],"correctAnswer":0}
	]}`}}
	g := newTestContentGenerator(gen)

	qs, err := g.GenerateQuestions(context.Background(), "frontend", "beginner", 5)

	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "What is HTML?", qs[0].Question)
}

func TestApplyConfigUpdatesModel(t *testing.T) {
	gen := &fakeGenerator{}
	g := newTestContentGenerator(gen)

	cfg := testAIConfig()
	cfg.Model = "next-model"
	cfg.MaxRetries = 0
	g.ApplyConfig(cfg)

	assert.Equal(t, "next-model", gen.model)
	_ = g.SkillResources(context.Background(), "React", "beginner")
	assert.Equal(t, int32(1), gen.calls.Load())
}
