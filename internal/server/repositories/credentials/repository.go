package credentials

import (
	"context"

	"github.com/dmitrijs2005/shack/internal/server/models"
)

type Repository interface {
	// Find returns the credential record for username, or common.ErrNotFound.
	Find(ctx context.Context, username string) (*models.Credential, error)

	// Create persists a new credential record.
	Create(ctx context.Context, credential *models.Credential) (*models.Credential, error)
}
