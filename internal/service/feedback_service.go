package service

import (
	"strings"
	"sync"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type FeedbackRequest struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message" binding:"required"`
	Rating  int                    `json:"rating" binding:"omitempty,min=1,max=5"`
	Context map[string]interface{} `json:"context"`
}

// FeedbackService 记录日志后异步写库，写库失败只记日志
type FeedbackService struct {
	Repo *repository.FeedbackRepository
	wg   sync.WaitGroup
}

func NewFeedbackService(repo *repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{Repo: repo}
}

// Submit 立即返回反馈 ID
func (s *FeedbackService) Submit(userID uint, req FeedbackRequest) string {
	fbType := strings.TrimSpace(req.Type)
	if fbType == "" {
		fbType = "general"
	}
	fb := &model.Feedback{
		ID:      model.GenerateUUID(),
		UserID:  userID,
		Type:    fbType,
		Message: req.Message,
		Rating:  req.Rating,
	}
	if len(req.Context) > 0 {
		fb.Context = datatypes.JSONMap(req.Context)
	}

	logger.Log.Info("User feedback received",
		zap.Uint("userID", userID),
		zap.String("type", fbType),
		zap.Int("rating", req.Rating),
		zap.String("message", req.Message))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Repo.Append(fb); err != nil {
			logger.Log.Error("Failed to persist feedback", zap.String("feedbackID", fb.ID), zap.Error(err))
		}
	}()
	return fb.ID
}

// Wait 等待所有未完成的写入，关闭服务时调用
func (s *FeedbackService) Wait() {
	s.wg.Wait()
}
