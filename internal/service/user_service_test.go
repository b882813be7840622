package service

import (
	"testing"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/testutil"
	"skillpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewProgressRepository(db),
		repository.NewLearningPathRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewFeedbackRepository(db),
		repository.NewCertificateRepository(db),
	)
}

func strPtr(v string) *string { return &v }

func TestUpdateProfile(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Alan", "alan@example.com", "Math")
	svc := newUserService(db)

	updated, err := svc.UpdateProfile(user.ID, ProfileUpdate{
		Name:            strPtr("Alan Turing"),
		Skills:          []string{"Go", " Go ", "Crypto"},
		ExperienceLevel: strPtr("advanced"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Alan Turing", updated.Name)
	assert.Equal(t, []string{"Go", "Crypto"}, []string(updated.Profile.Skills))
	assert.Equal(t, model.LevelAdvanced, updated.Profile.ExperienceLevel)

	_, err = svc.UpdateProfile(9999, ProfileUpdate{Name: strPtr("ghost")})
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestDeleteAccountCascades(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Edsger", "edsger@example.com")
	other := testutil.CreateUser(t, db, "Tony", "tony@example.com")
	svc := newUserService(db)

	require.NoError(t, db.Create(&model.LearningPath{UserID: user.ID, Title: "p"}).Error)
	require.NoError(t, db.Create(&model.LearningPath{UserID: other.ID, Title: "q"}).Error)
	_, err := repository.NewProgressRepository(db).Upsert(user.ID, "p", func(p *model.Progress) {})
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.AssessmentResult{UserID: user.ID, Domain: "Go", CompletedAt: testutil.Day(0)}).Error)
	require.NoError(t, repository.NewFeedbackRepository(db).Append(&model.Feedback{UserID: user.ID, Message: "hi"}))
	key := model.CertificateActiveKey(user.ID, "Go")
	require.NoError(t, db.Create(&model.Certificate{
		ID:           "CERT-1-AAAAAAAAA",
		UserID:       user.ID,
		ActiveKey:    &key,
		Domain:       "Go",
		Verification: datatypes.NewJSONType(model.VerificationRecord{CertificateID: "CERT-1-AAAAAAAAA"}),
	}).Error)

	require.NoError(t, svc.DeleteAccount(user.ID))

	var count int64
	db.Unscoped().Model(&model.User{}).Where("id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.LearningPath{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.LearningPath{}).Where("user_id = ?", other.ID).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&model.Progress{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.AssessmentResult{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.Feedback{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)

	var cert model.Certificate
	require.NoError(t, db.First(&cert, "id = ?", "CERT-1-AAAAAAAAA").Error)
	assert.True(t, cert.IsRevoked)
	assert.Nil(t, cert.ActiveKey)

	assert.ErrorIs(t, svc.DeleteAccount(user.ID), util.ErrUserNotFound)
}
