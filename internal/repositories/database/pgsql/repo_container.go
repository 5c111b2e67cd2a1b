package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	walletRepo := newPgxWalletRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, walletRepo)
	partnerRepo := newPgxPartnerRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TransactionRepo: transactionRepo,
		WalletRepo:      walletRepo,
		PartnerRepo:     partnerRepo,
		UserRepo:        userRepo,
		AuditRepo:       auditRepo,
	}
}
