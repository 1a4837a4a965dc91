package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shack/internal/common"
	"github.com/dmitrijs2005/shack/internal/dbx"
	"github.com/dmitrijs2005/shack/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Find(ctx context.Context, username string) (*models.Credential, error) {
	query :=
		`SELECT id, username, password_hash FROM credentials
		 WHERE username = ?
		 `

	credential := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&credential.ID, &credential.Username, &credential.PasswordHash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return credential, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, credential *models.Credential) (*models.Credential, error) {

	query :=
		`INSERT INTO credentials (username, password_hash)
		 VALUES (?, ?)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		credential.Username, credential.PasswordHash).Scan(&credential.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return credential, nil
}
