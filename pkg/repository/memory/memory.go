package memory

import (
	"github.com/vlah-sh/mosaic/pkg/domain/interfaces"
)

// Memory is an in-memory repository backend for development and tests.
// Each instance is fully isolated; state is lost on process exit.
type Memory struct {
	catalog *catalogRepository
	ledger  *ledgerRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		catalog: newCatalogRepository(),
		ledger:  newLedgerRepository(),
	}
}

func (m *Memory) Catalog() interfaces.CatalogRepository {
	return m.catalog
}

func (m *Memory) Ledger() interfaces.LedgerRepository {
	return m.ledger
}

func (m *Memory) Close() error {
	return nil
}
