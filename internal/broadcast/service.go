package broadcast

import (
	"context"
	"time"

	"github.com/asahigaoka/sitehooks/internal/cache"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/asahigaoka/sitehooks/internal/utils"
)

// History is the authoritative record of past broadcasts.
type History interface {
	HasNotification(ctx context.Context, articleID models.ID, notificationType string) (bool, error)
	RecordNotification(ctx context.Context, rec models.NotificationRecord) error
}

// Sender delivers a text message to every subscriber.
type Sender interface {
	Broadcast(ctx context.Context, text string) (map[string]any, error)
}

// Result of a guarded send. Response is nil when Skipped.
type Result struct {
	Skipped  bool
	Response map[string]any
}

// Service sends article announcements at most once per article.
type Service struct {
	history History
	sender  Sender
	cache   cache.RedisInterface // optional
	ttl     time.Duration
}

func NewService(history History, sender Sender, markers cache.RedisInterface, ttl time.Duration) *Service {
	return &Service{
		history: history,
		sender:  sender,
		cache:   markers,
		ttl:     ttl,
	}
}

func markerKey(articleID models.ID) string {
	return utils.Hash(models.NotificationTypeLine + ":" + articleID.String())
}

// Send broadcasts message unless articleID was already announced. A failed
// history lookup counts as already announced.
func (s *Service) Send(ctx context.Context, articleID models.ID, message string) (Result, error) {
	log := logger.Get()

	if s.seenInCache(ctx, articleID) {
		log.Info().Str("article_id", articleID.String()).Msg("Broadcast skipped by cache marker")
		return Result{Skipped: true}, nil
	}

	sent, err := s.history.HasNotification(ctx, articleID, models.NotificationTypeLine)
	if err != nil {
		log.Error().Err(err).Str("article_id", articleID.String()).
			Msg("Notification history lookup failed, treating as already sent")
		return Result{Skipped: true}, nil
	}
	if sent {
		log.Info().Str("article_id", articleID.String()).Msg("Broadcast already recorded")
		s.mark(ctx, articleID)
		return Result{Skipped: true}, nil
	}

	resp, err := s.sender.Broadcast(ctx, message)
	if err != nil {
		return Result{}, err
	}

	rec := models.NotificationRecord{
		ArticleID:        articleID,
		NotificationType: models.NotificationTypeLine,
		MessageHash:      utils.Hash(message),
		ResponseData:     resp,
	}
	if err := s.history.RecordNotification(ctx, rec); err != nil {
		log.Error().Err(err).Str("article_id", articleID.String()).Msg("Failed to record notification")
	}
	s.mark(ctx, articleID)

	log.Info().Str("article_id", articleID.String()).Msg("Broadcast sent")
	return Result{Response: resp}, nil
}

// SendUnguarded broadcasts without consulting or writing the history.
func (s *Service) SendUnguarded(ctx context.Context, message string) (map[string]any, error) {
	return s.sender.Broadcast(ctx, message)
}

func (s *Service) seenInCache(ctx context.Context, articleID models.ID) bool {
	if s.cache == nil {
		return false
	}
	seen, err := s.cache.IsProcessed(ctx, markerKey(articleID))
	if err != nil {
		logger.Get().Warn().Err(err).Msg("Broadcast marker lookup failed")
		return false
	}
	return seen
}

func (s *Service) mark(ctx context.Context, articleID models.ID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.MarkProcessed(ctx, markerKey(articleID), s.ttl); err != nil {
		logger.Get().Warn().Err(err).Msg("Failed to set broadcast marker")
	}
}
