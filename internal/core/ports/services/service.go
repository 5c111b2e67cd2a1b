package services

// ServiceContainer bundles every service facade for handler registration.
type ServiceContainer struct {
	Transaction TransactionSvcFacade
	Correction  CorrectionSvcFacade
	Wallet      WalletSvcFacade
	Partner     PartnerSvcFacade
	User        UserSvcFacade
	Audit       AuditSvcFacade
}
