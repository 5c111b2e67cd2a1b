package services

import (
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized
// dependencies. refCache may be nil when redis is not configured; reference
// dedup then falls back to the database unique index.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, refCache portsrepo.ReferenceCache) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The audit service comes first since everything else reports into it.
	container.Audit = NewAuditService(repos.AuditRepo)

	container.Transaction = NewTransactionService(repos.TransactionRepo, refCache, container.Audit)
	container.Correction = NewCorrectionService(repos.TransactionRepo, container.Audit)
	container.Wallet = NewWalletService(repos.TransactionRepo, repos.WalletRepo, container.Audit)
	container.Partner = NewPartnerService(repos.PartnerRepo, repos.WalletRepo, container.Audit)
	container.User = NewUserService(repos.UserRepo, container.Audit)

	return container
}
