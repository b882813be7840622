package repository

import (
	"errors"
	"testing"
	"time"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCert(id string, userID uint, domain string) *model.Certificate {
	key := model.CertificateActiveKey(userID, domain)
	return &model.Certificate{
		ID:        id,
		UserID:    userID,
		ActiveKey: &key,
		Domain:    domain,
		Content:   "<html></html>",
		IssuedAt:  time.Now(),
	}
}

func TestCertificateActiveKeyIsUnique(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Ann", "ann@example.com")
	repo := NewCertificateRepository(db)

	require.NoError(t, repo.Create(newCert("CERT-1", user.ID, "frontend")))

	err := repo.Create(newCert("CERT-2", user.ID, "Frontend"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// 吊销后可以重新颁发
	require.NoError(t, repo.Revoke("CERT-1"))
	require.NoError(t, repo.Create(newCert("CERT-3", user.ID, "frontend")))

	active, err := repo.FindActive(user.ID, "FRONTEND")
	require.NoError(t, err)
	assert.Equal(t, "CERT-3", active.ID)
}

func TestCertificateIncrementDownload(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Ann", "ann@example.com")
	repo := NewCertificateRepository(db)
	require.NoError(t, repo.Create(newCert("CERT-1", user.ID, "backend")))

	require.NoError(t, repo.IncrementDownload("CERT-1"))
	require.NoError(t, repo.IncrementDownload("CERT-1"))

	c, err := repo.FindByID("CERT-1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.DownloadCount)
	assert.NotNil(t, c.LastDownloadedAt)
}

func TestCertificateListOmitsContent(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Ann", "ann@example.com")
	repo := NewCertificateRepository(db)
	require.NoError(t, repo.Create(newCert("CERT-1", user.ID, "backend")))

	list, err := repo.ListByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Content)
}

func TestCertificateRevokeAllByUser(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "Ann", "ann@example.com")
	repo := NewCertificateRepository(db)
	require.NoError(t, repo.Create(newCert("CERT-1", user.ID, "backend")))
	require.NoError(t, repo.Create(newCert("CERT-2", user.ID, "devops")))

	require.NoError(t, repo.RevokeAllByUser(user.ID))

	_, err := repo.FindActive(user.ID, "backend")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	c, err := repo.FindByID("CERT-2")
	require.NoError(t, err)
	assert.True(t, c.IsRevoked)
	assert.Nil(t, c.ActiveKey)
}
