// Package services contains server-side business logic: credential
// verification/provisioning and the message log.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shack/internal/common"
	"github.com/dmitrijs2005/shack/internal/cryptox"
	"github.com/dmitrijs2005/shack/internal/dbx"
	"github.com/dmitrijs2005/shack/internal/logging"
	"github.com/dmitrijs2005/shack/internal/server/models"
	"github.com/dmitrijs2005/shack/internal/server/repositories/repomanager"
)

// CredentialService verifies passwords against stored digests and
// provisions a credential record on the first login of an unknown username.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *CredentialService {
	return &CredentialService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "credential_service"),
	}
}

// Authenticate checks username/password and returns the authenticated user.
//
// Known username: the password is verified against the stored digest; a
// mismatch yields common.ErrInvalidCredentials and the connection must be
// rejected. Unknown username with a non-empty password: a record is created
// and the login succeeds (first-use provisioning, there is no separate
// registration step). Unknown username with an empty password: the login
// succeeds without persisting anything. This is a deliberate guest
// affordance carried over from the original deployment, not a bug.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (models.User, error) {

	repo := s.repomanager.Credentials(s.db)

	record, err := repo.Find(ctx, username)
	if err == nil {
		if !cryptox.VerifyPassword(password, record.PasswordHash) {
			return models.Unauthenticated(), common.ErrInvalidCredentials
		}
		return models.Authenticated(username), nil
	}

	if !errors.Is(err, common.ErrNotFound) {
		return models.Unauthenticated(), fmt.Errorf("credential lookup: %w", err)
	}

	if password != "" {
		digest, err := cryptox.HashPassword(password)
		if err != nil {
			return models.Unauthenticated(), fmt.Errorf("hashing password: %w", err)
		}

		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			_, err := s.repomanager.Credentials(tx).Create(ctx, &models.Credential{
				Username:     username,
				PasswordHash: digest,
			})
			return err
		})
		if err != nil {
			return models.Unauthenticated(), fmt.Errorf("provisioning credential: %w", err)
		}

		s.logger.Info(ctx, "credential provisioned", "username", username)
	}

	return models.Authenticated(username), nil
}
