package repository

import (
	"sync"
	"testing"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressUpsertKeepsSingleRecord(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Ann", "ann@example.com")
	repo := NewProgressRepository(db)

	_, err := repo.Upsert(user.ID, "path-1", func(p *model.Progress) { p.OverallProgress = 30 })
	require.NoError(t, err)
	got, err := repo.Upsert(user.ID, "path-1", func(p *model.Progress) { p.OverallProgress = 80 })
	require.NoError(t, err)
	assert.Equal(t, float64(80), got.OverallProgress)

	var count int64
	require.NoError(t, db.Model(&model.Progress{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := repo.FindByUserAndPath(user.ID, "path-1")
	require.NoError(t, err)
	assert.Equal(t, float64(80), stored.OverallProgress)
}

func TestProgressUpsertConcurrent(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Ann", "ann@example.com")
	repo := NewProgressRepository(db)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Upsert(user.ID, "path-1", func(p *model.Progress) {
				tasks := p.TasksMap()
				tasks[string(rune('a'+i))] = model.TaskProgress{Completed: true}
				p.CompletedTasks = jsonTasks(tasks)
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := repo.ListByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].TasksMap(), 8)
}

func TestProgressDeleteByUser(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Ann", "ann@example.com")
	repo := NewProgressRepository(db)

	for _, id := range []string{"a", "b"} {
		_, err := repo.Upsert(user.ID, id, func(p *model.Progress) {})
		require.NoError(t, err)
	}
	require.NoError(t, repo.DeleteByUser(user.ID))

	list, err := repo.ListByUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
