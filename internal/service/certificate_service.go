package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillpath_backend/internal/fallback"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"
	"skillpath_backend/pkg/monitoring"
	"skillpath_backend/pkg/renderer"
	"skillpath_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	certInsertAttempts = 3
	certLockTTL        = 30 * time.Second
)

// GenerateCertificateRequest 颁发证书请求
type GenerateCertificateRequest struct {
	Domain         string   `json:"domain" binding:"required"`
	Skills         []string `json:"skills"`
	Level          string   `json:"level"`
	CompletionRate *int     `json:"completionRate"`
	TasksCompleted int      `json:"tasksCompleted"`
	TotalTasks     int      `json:"totalTasks"`
}

// PublicCertificate 公开验证接口返回的证书摘要
type PublicCertificate struct {
	CertificateID  string    `json:"certificateId"`
	RecipientName  string    `json:"recipientName"`
	Domain         string    `json:"domain"`
	Level          string    `json:"level"`
	Skills         []string  `json:"skills"`
	CompletionRate int       `json:"completionRate"`
	IssuedAt       time.Time `json:"issuedAt"`
	IsRevoked      bool      `json:"isRevoked"`
}

type CertificateVerification struct {
	VerificationResult
	Certificate *PublicCertificate `json:"certificate,omitempty"`
}

type CertificateService struct {
	Repo     *repository.CertificateRepository
	UserRepo *repository.UserRepository
	PathRepo *repository.LearningPathRepository
	Cache    *repository.CacheRepository
	Storage  *StorageService
	Renderer renderer.Renderer
	Composer *CertificateComposer
	Secret   string
}

func NewCertificateService(
	repo *repository.CertificateRepository,
	userRepo *repository.UserRepository,
	pathRepo *repository.LearningPathRepository,
	cache *repository.CacheRepository,
	storage *StorageService,
	r renderer.Renderer,
	composer *CertificateComposer,
	secret string,
) *CertificateService {
	return &CertificateService{
		Repo:     repo,
		UserRepo: userRepo,
		PathRepo: pathRepo,
		Cache:    cache,
		Storage:  storage,
		Renderer: r,
		Composer: composer,
		Secret:   secret,
	}
}

// courseProgress 计算任务数：请求显式给出时直接使用，否则取该领域学习路径的模块完成情况，
// 都没有时按技能数计，完成数由 completionRate（缺省 100）换算
func (s *CertificateService) courseProgress(userID uint, req GenerateCertificateRequest, skills []string) (int, int) {
	if req.TotalTasks > 0 {
		return req.TasksCompleted, req.TotalTasks
	}

	paths, err := s.PathRepo.ListByUserAndDomain(userID, req.Domain)
	if err != nil {
		logger.Log.Warn("Failed to load learning paths for certificate", zap.Error(err))
	}
	completed, total := 0, 0
	for _, p := range paths {
		total += len(p.Modules)
		completed += p.CompletedModules()
	}
	if total > 0 {
		return completed, total
	}

	total = len(skills)
	if total < 1 {
		total = 1
	}
	rate := 100
	if req.CompletionRate != nil {
		rate = int(ClampPercent(float64(*req.CompletionRate)))
	}
	return int(float64(total)*float64(rate)/100 + 0.5), total
}

// Generate 颁发证书。同一用户同一领域只能有一张未吊销的证书：
// 先读检查，再加 Redis 短锁，最终由 active_key 唯一索引保证
func (s *CertificateService) Generate(ctx context.Context, userID uint, req GenerateCertificateRequest) (*model.Certificate, error) {
	domain := strings.TrimSpace(req.Domain)
	if domain == "" {
		return nil, util.ErrDomainRequired
	}
	req.Domain = domain

	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	} else if err != nil {
		return nil, err
	}

	if _, err := s.Repo.FindActive(userID, domain); err == nil {
		return nil, util.ErrCertificateExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	activeKey := model.CertificateActiveKey(userID, domain)
	lockKey := "skillpath:lock:certificate:" + activeKey
	ok, err := s.Cache.AcquireLock(ctx, lockKey, certLockTTL)
	if err != nil {
		logger.Log.Warn("Certificate lock unavailable, relying on unique index", zap.Error(err))
	} else if !ok {
		return nil, util.ErrLockNotAcquired
	} else {
		defer func() {
			if err := s.Cache.ReleaseLock(context.Background(), lockKey); err != nil {
				logger.Log.Warn("Failed to release certificate lock", zap.Error(err))
			}
		}()
	}

	skills := util.DedupStrings(req.Skills)
	level := fallback.NormalizeLevel(req.Level)
	completed, total := s.courseProgress(userID, req, skills)

	for attempt := 1; attempt <= certInsertAttempts; attempt++ {
		composed, err := s.Composer.Compose(
			UserInfo{Name: user.Name, Email: user.Email},
			CourseDetails{Domain: domain, Level: level, Skills: skills, TasksCompleted: completed, TotalTasks: total},
		)
		if err != nil {
			return nil, err
		}

		key := activeKey
		cert := &model.Certificate{
			ID:             composed.CertificateID,
			UserID:         userID,
			ActiveKey:      &key,
			RecipientName:  user.Name,
			RecipientEmail: user.Email,
			Domain:         domain,
			Level:          level,
			Skills:         skills,
			CompletionRate: composed.CompletionRate,
			TasksCompleted: composed.TasksCompleted,
			TotalTasks:     composed.TotalTasks,
			Content:        composed.Content,
			Verification:   datatypes.NewJSONType(composed.Verification),
			IssuedAt:       composed.IssuedAt,
		}
		cert.Signature = SignCertificate(s.Secret, cert)

		err = s.Repo.Create(cert)
		if err == nil {
			monitoring.CertificatesIssued.Inc()
			logger.Log.Info("Certificate issued",
				zap.String("certificateId", cert.ID),
				zap.Uint("userID", userID),
				zap.String("domain", domain))
			return cert, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// 唯一冲突可能来自 active_key，也可能是 ID 撞车
		if _, ferr := s.Repo.FindActive(userID, domain); ferr == nil {
			return nil, util.ErrCertificateExists
		}
		logger.Log.Warn("Certificate ID collision, regenerating",
			zap.String("certificateId", cert.ID),
			zap.Int("attempt", attempt))
	}
	return nil, fmt.Errorf("failed to allocate a unique certificate id after %d attempts", certInsertAttempts)
}

func (s *CertificateService) List(userID uint) ([]model.Certificate, error) {
	return s.Repo.ListByUser(userID)
}

func (s *CertificateService) findOwned(userID uint, id string) (*model.Certificate, error) {
	cert, err := s.Repo.FindByIDAndUser(id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCertificateNotFound
	}
	return cert, err
}

// Get 每次读取都会增加下载次数
func (s *CertificateService) Get(userID uint, id string) (*model.Certificate, error) {
	cert, err := s.findOwned(userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.IncrementDownload(id); err != nil {
		return nil, err
	}
	now := time.Now()
	cert.DownloadCount++
	cert.LastDownloadedAt = &now
	return cert, nil
}

// Verify 公开验证：ID 与验证记录一致、未吊销且签名正确才有效
func (s *CertificateService) Verify(id string) (*CertificateVerification, error) {
	cert, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &CertificateVerification{
			VerificationResult: VerifyCertificate(id, nil),
		}, nil
	} else if err != nil {
		return nil, err
	}

	record := cert.Verification.Data()
	result := VerifyCertificate(id, &record)
	if result.IsValid && cert.IsRevoked {
		result = VerificationResult{IsValid: false, Message: "Certificate has been revoked"}
	}
	if result.IsValid && !VerifySignature(s.Secret, cert) {
		result = VerificationResult{IsValid: false, Message: "Certificate signature is invalid"}
	}

	return &CertificateVerification{
		VerificationResult: result,
		Certificate: &PublicCertificate{
			CertificateID:  cert.ID,
			RecipientName:  cert.RecipientName,
			Domain:         cert.Domain,
			Level:          cert.Level,
			Skills:         cert.Skills,
			CompletionRate: cert.CompletionRate,
			IssuedAt:       cert.IssuedAt,
			IsRevoked:      cert.IsRevoked,
		},
	}, nil
}

// Image 返回证书 PNG：优先读取归档，否则渲染后尽力归档
func (s *CertificateService) Image(ctx context.Context, userID uint, id string) ([]byte, error) {
	cert, err := s.findOwned(userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.IncrementDownload(id); err != nil {
		return nil, err
	}

	if cert.ImageURL != "" {
		img, err := s.Storage.LoadCertificateImage(ctx, cert.ID)
		if err == nil {
			return img, nil
		}
		if !errors.Is(err, ErrObjectNotFound) {
			logger.Log.Warn("Failed to load archived certificate image", zap.String("certificateId", cert.ID), zap.Error(err))
		}
	}

	img, err := s.render(ctx, cert)
	if err != nil {
		return nil, err
	}

	url, err := s.Storage.SaveCertificateImage(ctx, cert.ID, img)
	if err != nil {
		logger.Log.Warn("Failed to archive certificate image", zap.String("certificateId", cert.ID), zap.Error(err))
		return img, nil
	}
	if err := s.Repo.UpdateImageURL(cert.ID, url); err != nil {
		logger.Log.Warn("Failed to save certificate image url", zap.String("certificateId", cert.ID), zap.Error(err))
	}
	return img, nil
}

func (s *CertificateService) render(ctx context.Context, cert *model.Certificate) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "certificate.render",
		attribute.String("certificate.id", cert.ID),
		attribute.String("renderer.engine", s.Renderer.Engine()))

	start := time.Now()
	img, err := s.Renderer.Render(ctx, cert.Content)
	monitoring.ObserveRender(s.Renderer.Engine(), start, err)
	if err != nil {
		err = fmt.Errorf("%w: %v", util.ErrRenderFailed, err)
		tracing.EndSpan(span, err)
		logger.Log.Error("Certificate rendering failed", zap.String("certificateId", cert.ID), zap.Error(err))
		return nil, err
	}
	tracing.EndSpan(span, nil)
	return img, nil
}

// Revoke 吊销证书，吊销后同一领域可以重新颁发
func (s *CertificateService) Revoke(userID uint, id string) error {
	cert, err := s.findOwned(userID, id)
	if err != nil {
		return err
	}
	if cert.IsRevoked {
		return util.ErrCertificateRevoked
	}
	return s.Repo.Revoke(id)
}
