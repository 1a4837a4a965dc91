package messages

import (
	"context"

	"github.com/dmitrijs2005/shack/internal/server/models"
)

type Repository interface {
	// Create appends a message to the log and fills in its assigned ID.
	Create(ctx context.Context, message *models.Message) (*models.Message, error)

	// Recent returns the most recent limit messages in ascending insertion
	// order (oldest first).
	Recent(ctx context.Context, limit int) ([]models.Message, error)
}
