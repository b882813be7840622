package service

import (
	"testing"

	"skillpath_backend/internal/fallback"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/testutil"
	"skillpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLearningPathService(t *testing.T) (*LearningPathService, *repository.ProgressRepository, *model.User) {
	t.Helper()
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Barbara", "barbara@example.com")
	progressRepo := repository.NewProgressRepository(db)
	return NewLearningPathService(repository.NewLearningPathRepository(db), progressRepo), progressRepo, user
}

func TestCreateFromDailyPlan(t *testing.T) {
	svc, _, user := newLearningPathService(t)
	plan := fallback.DailyPlan("frontend", []string{"HTML", "CSS"}, "beginner", 5)

	path, err := svc.CreateFromDailyPlan(user.ID, plan, []string{"HTML", "CSS"})

	require.NoError(t, err)
	assert.Equal(t, model.PathSourceDailyPlan, path.Source)
	assert.Equal(t, "5-day frontend plan", path.Title)
	require.Len(t, path.Modules, 5)
	assert.Equal(t, 1, path.Modules[0].Day)
	assert.Equal(t, []string{"HTML", "CSS"}, []string(path.Tags))
	assert.Zero(t, path.CompletionPercentage)
}

func TestCompleteModule(t *testing.T) {
	svc, progressRepo, user := newLearningPathService(t)
	path, err := svc.Create(user.ID, CreatePathRequest{
		Title:   "Go basics",
		Domain:  "backend",
		Modules: []model.PathModule{{Title: "Syntax", EstimatedMinutes: 30}, {Title: "Concurrency", EstimatedMinutes: 45}},
	})
	require.NoError(t, err)

	updated, err := svc.CompleteModule(user.ID, path.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.CompletionPercentage)
	assert.False(t, updated.IsCompleted)

	// 重复完成同一模块不重复计时
	_, err = svc.CompleteModule(user.ID, path.ID, 0)
	require.NoError(t, err)

	updated, err = svc.CompleteModule(user.ID, path.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.CompletionPercentage)
	assert.True(t, updated.IsCompleted)

	p, err := progressRepo.FindByUserAndPath(user.ID, path.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.OverallProgress)
	assert.Equal(t, model.ProgressStatusCompleted, p.Status)
	assert.Equal(t, 75, p.TimeSpent)
	assert.Len(t, p.TasksMap(), 2)

	_, err = svc.CompleteModule(user.ID, path.ID, 5)
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}

func TestLearningPathOwnership(t *testing.T) {
	svc, progressRepo, user := newLearningPathService(t)
	path, err := svc.Create(user.ID, CreatePathRequest{Title: "Mine"})
	require.NoError(t, err)

	_, err = svc.Get(user.ID+1, path.ID)
	assert.ErrorIs(t, err, util.ErrLearningPathNotFound)
	assert.ErrorIs(t, svc.Delete(user.ID+1, path.ID), util.ErrLearningPathNotFound)

	_, err = progressRepo.Upsert(user.ID, path.ID, func(p *model.Progress) { p.OverallProgress = 10 })
	require.NoError(t, err)

	require.NoError(t, svc.Delete(user.ID, path.ID))
	_, err = svc.Get(user.ID, path.ID)
	assert.ErrorIs(t, err, util.ErrLearningPathNotFound)
	list, err := progressRepo.ListByUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
