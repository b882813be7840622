package service

import (
	"errors"
	"strings"

	"skillpath_backend/internal/fallback"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProfileUpdate 资料更新请求，nil 字段保持原值
type ProfileUpdate struct {
	Name            *string  `json:"name"`
	Skills          []string `json:"skills"`
	ExperienceLevel *string  `json:"experienceLevel"`
	Goals           []string `json:"goals"`
	Bio             *string  `json:"bio"`
}

// UserService 处理用户资料和账号注销
type UserService struct {
	UserRepo       *repository.UserRepository
	ProgressRepo   *repository.ProgressRepository
	PathRepo       *repository.LearningPathRepository
	AssessmentRepo *repository.AssessmentRepository
	FeedbackRepo   *repository.FeedbackRepository
	CertRepo       *repository.CertificateRepository
}

func NewUserService(
	userRepo *repository.UserRepository,
	progressRepo *repository.ProgressRepository,
	pathRepo *repository.LearningPathRepository,
	assessmentRepo *repository.AssessmentRepository,
	feedbackRepo *repository.FeedbackRepository,
	certRepo *repository.CertificateRepository,
) *UserService {
	return &UserService{
		UserRepo:       userRepo,
		ProgressRepo:   progressRepo,
		PathRepo:       pathRepo,
		AssessmentRepo: assessmentRepo,
		FeedbackRepo:   feedbackRepo,
		CertRepo:       certRepo,
	}
}

func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// UpdateProfile 更新用户资料
func (s *UserService) UpdateProfile(userID uint, req ProfileUpdate) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			user.Name = name
		}
	}
	if req.Skills != nil {
		user.Profile.Skills = util.DedupStrings(req.Skills)
	}
	if req.ExperienceLevel != nil {
		user.Profile.ExperienceLevel = fallback.NormalizeLevel(*req.ExperienceLevel)
	}
	if req.Goals != nil {
		user.Profile.Goals = util.DedupStrings(req.Goals)
	}
	if req.Bio != nil {
		user.Profile.Bio = strings.TrimSpace(*req.Bio)
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount 级联清理用户数据后物理删除用户。
// 依赖数据清理失败只记录日志，不阻止删除用户本身；证书只吊销不删除。
func (s *UserService) DeleteAccount(userID uint) error {
	if _, err := s.GetUserByID(userID); err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func(uint) error
	}{
		{"progress", s.ProgressRepo.DeleteByUser},
		{"learning_paths", s.PathRepo.DeleteByUser},
		{"assessment_results", s.AssessmentRepo.DeleteByUser},
		{"feedback", s.FeedbackRepo.DeleteByUser},
		{"certificates", s.CertRepo.RevokeAllByUser},
	}
	for _, step := range steps {
		if err := step.fn(userID); err != nil {
			logger.Log.Error("Failed to clean up user data",
				zap.Uint("userID", userID),
				zap.String("target", step.name),
				zap.Error(err))
		}
	}

	if err := s.UserRepo.HardDelete(userID); err != nil {
		return err
	}
	logger.Log.Info("User account deleted", zap.Uint("userID", userID))
	return nil
}
