package repository

import (
	"errors"
	"testing"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserEmailUnique(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepository(db)
	require.NoError(t, repo.Create(&model.User{Name: "a", Email: "a@example.com", Password: "x"}))

	err := repo.Create(&model.User{Name: "b", Email: "a@example.com", Password: "y"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestUserSkillsProgressAndHardDelete(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepository(db)
	user := testutil.CreateUser(t, db, "Ann", "ann@example.com", "go")

	require.NoError(t, repo.UpdateSkillsProgress(user.ID, map[string]model.SkillProgress{
		"backend": {Level: model.LevelIntermediate, LastScore: 72, Count: 1},
	}))
	got, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 72, got.SkillsProgressMap()["backend"].LastScore)
	assert.Equal(t, []string{"go"}, []string(got.Profile.Skills))

	require.NoError(t, repo.HardDelete(user.ID))
	var count int64
	require.NoError(t, db.Unscoped().Model(&model.User{}).Where("id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAssessmentListRecent(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Ann", "ann@example.com")
	repo := NewAssessmentRepository(db)

	for i := 0; i < 12; i++ {
		require.NoError(t, repo.CreateResult(&model.AssessmentResult{
			UserID:      user.ID,
			Domain:      "backend",
			Percentage:  i,
			CompletedAt: testutil.Day(i),
		}))
	}

	recent, err := repo.ListRecent(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, 11, recent[0].Percentage)

	all, err := repo.ListAll(user.ID)
	require.NoError(t, err)
	assert.Len(t, all, 12)
	assert.Equal(t, 0, all[0].Percentage)
}
