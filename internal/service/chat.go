package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/selera-app/backend/internal/metrics"
	"github.com/selera-app/backend/internal/models"
)

// ErrEmptyMessage is returned when a chat message has no content left
// after sanitizing.
var ErrEmptyMessage = errors.New("message cannot be empty")

// sweepInterval is how often expired chat messages are removed.
const sweepInterval = 10 * time.Minute

// ChatService persists chat messages, relays them through the hub and
// sweeps out messages older than the retention window.
type ChatService struct {
	db        *gorm.DB
	hub       *ChatHub
	retention time.Duration
}

func NewChatService(db *gorm.DB, hub *ChatHub, retention time.Duration) *ChatService {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &ChatService{db: db, hub: hub, retention: retention}
}

// Hub exposes the connection registry to the websocket handler.
func (s *ChatService) Hub() *ChatHub {
	return s.hub
}

// Post stores a message from an authenticated user and broadcasts it to
// every connection. The sender connection is tagged so the client renders
// the message as its own.
func (s *ChatService) Post(ctx context.Context, sender *ChatClient, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(SanitizeHTML(content))
	if content == "" {
		return nil, ErrEmptyMessage
	}

	msg := &models.ChatMessage{
		Content: content,
		UserID:  sender.UserID,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	metrics.ChatMessagesTotal.Inc()

	s.hub.Broadcast(ChatEvent{
		Event:    EventNewMessage,
		ID:       msg.ID.String(),
		Username: sender.Username,
		Content:  msg.Content,
		SentAt:   msg.CreatedAt.UTC().Format(time.RFC3339),
	}, sender)

	return msg, nil
}

// Recent returns messages inside the retention window in send order, for
// the templated initial page load.
func (s *ChatService) Recent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	cutoff := time.Now().Add(-s.retention)

	var messages []models.ChatMessage
	err := s.db.WithContext(ctx).Preload("User").
		Where("created_at > ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Sweep deletes messages older than the retention window and returns how
// many were removed.
func (s *ChatService) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)
	res := s.db.WithContext(ctx).
		Where("created_at <= ?", cutoff).
		Delete(&models.ChatMessage{})
	return res.RowsAffected, res.Error
}

// StartSweeper runs the retention sweep periodically until ctx is done.
func (s *ChatService) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.Sweep(ctx)
				if err != nil {
					log.Error().Err(err).Msg("chat retention sweep failed")
					continue
				}
				if removed > 0 {
					log.Info().Int64("removed", removed).Msg("chat retention sweep")
				}
			}
		}
	}()
}
