package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/shack/internal/logging"
	"github.com/dmitrijs2005/shack/internal/server/models"
	"github.com/dmitrijs2005/shack/internal/server/repositories/repomanager"
)

// MessageService is the append-only message log. Append failures are
// surfaced to the caller and the message is dropped; there is no retry or
// buffering.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	limit       int
	logger      logging.Logger
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, limit int, l logging.Logger) *MessageService {
	return &MessageService{
		db:          db,
		repomanager: m,
		limit:       limit,
		logger:      l.With("module", "message_service"),
	}
}

func (s *MessageService) Append(ctx context.Context, content string, sender models.User) error {
	repo := s.repomanager.Messages(s.db)

	_, err := repo.Create(ctx, &models.Message{Content: content, Sender: sender})
	if err != nil {
		s.logger.Error(ctx, "append failed", "sender", sender.Username, "error", err)
		return fmt.Errorf("appending message: %w", err)
	}

	return nil
}

// Recent returns the newest messages in ascending insertion order, capped
// at the configured history limit so per-tick render cost stays bounded.
func (s *MessageService) Recent(ctx context.Context) ([]models.Message, error) {
	repo := s.repomanager.Messages(s.db)

	result, err := repo.Recent(ctx, s.limit)
	if err != nil {
		s.logger.Error(ctx, "fetch failed", "error", err)
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	return result, nil
}
