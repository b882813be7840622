package service

import (
	"sync"
	"testing"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/testutil"
	"skillpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func newProgressService(t *testing.T) (*ProgressService, *model.User) {
	t.Helper()
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Ken", "ken@example.com")
	return NewProgressService(repository.NewProgressRepository(db)), user
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercent(-5))
	assert.Equal(t, 42.5, ClampPercent(42.5))
	assert.Equal(t, 100.0, ClampPercent(180))
}

func TestProgressUpdateUpsertsSingleRecord(t *testing.T) {
	svc, user := newProgressService(t)

	_, err := svc.Update(user.ID, ProgressUpdate{LearningPathID: "path-1", OverallProgress: floatPtr(30)})
	require.NoError(t, err)
	p, err := svc.Update(user.ID, ProgressUpdate{LearningPathID: "path-1", OverallProgress: floatPtr(100), Score: floatPtr(88)})
	require.NoError(t, err)

	assert.Equal(t, 100.0, p.OverallProgress)
	assert.Equal(t, model.ProgressStatusCompleted, p.Status)
	require.NotNil(t, p.Score)
	assert.Equal(t, 88.0, *p.Score)

	list, err := svc.List(user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProgressUpdateTasks(t *testing.T) {
	svc, user := newProgressService(t)

	_, err := svc.Update(user.ID, ProgressUpdate{LearningPathID: "path-1", TaskID: "t1", TimeSpent: 20})
	require.NoError(t, err)
	_, err = svc.Update(user.ID, ProgressUpdate{LearningPathID: "path-1", TaskID: "t2", Completed: boolPtr(false)})
	require.NoError(t, err)
	p, err := svc.Update(user.ID, ProgressUpdate{LearningPathID: "path-1", TaskID: "t1", TimeSpent: 10})
	require.NoError(t, err)

	tasks := p.TasksMap()
	require.Len(t, tasks, 2)
	assert.True(t, tasks["t1"].Completed)
	assert.NotNil(t, tasks["t1"].CompletedAt)
	assert.Equal(t, 30, tasks["t1"].TimeSpent)
	assert.False(t, tasks["t2"].Completed)
	assert.Nil(t, tasks["t2"].CompletedAt)
	assert.Equal(t, 30, p.TimeSpent)
}

func TestProgressLegacyTaskFoldsIntoLegacyRecord(t *testing.T) {
	svc, user := newProgressService(t)

	_, err := svc.Update(user.ID, ProgressUpdate{TaskID: "old-task-1"})
	require.NoError(t, err)
	_, err = svc.Update(user.ID, ProgressUpdate{TaskID: "old-task-2"})
	require.NoError(t, err)

	p, err := svc.Get(user.ID, model.LegacyProgressKey)
	require.NoError(t, err)
	assert.Len(t, p.TasksMap(), 2)

	_, err = svc.Update(user.ID, ProgressUpdate{})
	assert.ErrorIs(t, err, ErrProgressKeyMissing)
}

func TestProgressConcurrentUpdatesSameKey(t *testing.T) {
	svc, user := newProgressService(t)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Update(user.ID, ProgressUpdate{LearningPathID: "shared", TimeSpent: 5})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := svc.List(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 30, list[0].TimeSpent)
}

func TestProgressGetMissing(t *testing.T) {
	svc, user := newProgressService(t)

	_, err := svc.Get(user.ID, "nope")

	assert.ErrorIs(t, err, util.ErrProgressNotFound)
}
