package repositories

// RepositoryProvider bundles every repository implementation for injection
// into the service container.
type RepositoryProvider struct {
	TransactionRepo TransactionRepository
	WalletRepo      WalletRepository
	PartnerRepo     PartnerRepository
	UserRepo        UserRepository
	AuditRepo       AuditRepository
}
