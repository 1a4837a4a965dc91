package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/shack/internal/dbx"
	"github.com/dmitrijs2005/shack/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/shack/internal/server/repositories/messages"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Messages(db dbx.DBTX) messages.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}
