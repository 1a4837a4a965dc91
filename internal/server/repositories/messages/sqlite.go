package messages

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shack/internal/dbx"
	"github.com/dmitrijs2005/shack/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {

	query :=
		`INSERT INTO messages (content, sender)
		 VALUES (?, ?)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		message.Content, message.Sender.Username).Scan(&message.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return message, nil
}

// Recent selects the newest rows first, then flips them back to ascending
// order so callers always see oldest-first.
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]models.Message, error) {
	query :=
		`SELECT id, content, sender FROM
		   (SELECT id, content, sender FROM messages ORDER BY id DESC LIMIT ?)
		 ORDER BY id ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Message
	for rows.Next() {
		var m models.Message
		var sender string
		if err := rows.Scan(&m.ID, &m.Content, &sender); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.Sender = models.Authenticated(sender)
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
