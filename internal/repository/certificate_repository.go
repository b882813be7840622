package repository

import (
	"time"

	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(cert *model.Certificate) error {
	return r.DB.Create(cert).Error
}

func (r *CertificateRepository) FindByID(id string) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *CertificateRepository) FindByIDAndUser(id string, userID uint) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&c).Error
	return &c, err
}

// FindActive 查找用户在该领域下未吊销的证书
func (r *CertificateRepository) FindActive(userID uint, domain string) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("active_key = ?", model.CertificateActiveKey(userID, domain)).First(&c).Error
	return &c, err
}

// ListByUser 列表不返回渲染后的 HTML
func (r *CertificateRepository) ListByUser(userID uint) ([]model.Certificate, error) {
	var list []model.Certificate
	err := r.DB.Omit("content").
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&list).Error
	return list, err
}

// IncrementDownload 原子自增下载次数
func (r *CertificateRepository) IncrementDownload(id string) error {
	return r.DB.Model(&model.Certificate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"download_count":     gorm.Expr("download_count + ?", 1),
			"last_downloaded_at": time.Now(),
		}).Error
}

func (r *CertificateRepository) UpdateImageURL(id, url string) error {
	return r.DB.Model(&model.Certificate{}).Where("id = ?", id).Update("image_url", url).Error
}

// Revoke 吊销证书并释放 active_key，之后同领域可以重新颁发
func (r *CertificateRepository) Revoke(id string) error {
	now := time.Now()
	return r.DB.Model(&model.Certificate{}).
		Where("id = ? AND is_revoked = ?", id, false).
		Updates(map[string]interface{}{
			"is_revoked": true,
			"revoked_at": now,
			"active_key": nil,
		}).Error
}

func (r *CertificateRepository) RevokeAllByUser(userID uint) error {
	now := time.Now()
	return r.DB.Model(&model.Certificate{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Updates(map[string]interface{}{
			"is_revoked": true,
			"revoked_at": now,
			"active_key": nil,
		}).Error
}
