package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/supportdesk/internal/dbx"
	"github.com/dmitrijs2005/supportdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/supportdesk/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps all data in process memory. Transactions
// are serialized with each other. A transaction that fails or panics is
// rolled back to the checkpoint taken when it started.
type InMemoryRepositoryManager struct {
	txMu          sync.Mutex
	users         *users.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) DB() dbx.DBTX { return nil }

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *InMemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	rollbackUsers := m.users.Checkpoint()
	rollbackTokens := m.refreshTokens.Checkpoint()
	rollback := func() {
		rollbackTokens()
		rollbackUsers()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
		if err != nil {
			rollback()
		}
	}()

	return fn(ctx, nil)
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
