// Package repomanager vends the server repositories for a storage backend
// (PostgreSQL or in-memory) and runs work inside backend transactions.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/supportdesk/internal/dbx"
	"github.com/dmitrijs2005/supportdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/supportdesk/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error

	// DB is the non-transactional handle to pass to the factories. It is nil
	// for the in-memory backend.
	DB() dbx.DBTX
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository

	// WithTx runs fn in a transaction; repositories built from tx take part
	// in it.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

	Close() error
}
