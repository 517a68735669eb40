package interfaces

// Repository aggregates the two stores one backend can provide. The CLI
// wires catalog and ledger independently, so a deployment may back them
// with different stores.
type Repository interface {
	Catalog() CatalogRepository
	Ledger() LedgerRepository

	Close() error
}
