package mail

// Mailer is the outbound-mail collaborator. The reconciliation engine treats
// it as fire-and-forget: failures are logged by the caller, never propagated
// into a transaction.
type Mailer interface {
	SendPaymentConfirmation(to string, displayName string) error
}
