package service

import "errors"

// Reconciliation failure classes. Everything except a signature failure (which
// never reaches this package) is absorbed at the webhook boundary: logged with
// the payload, acknowledged with 200 so the provider does not redeliver a
// permanently broken event forever.
var (
	// ErrMissingIdentity: the fetched resource carries neither a usable
	// external reference nor a payer email; the transaction is aborted.
	ErrMissingIdentity = errors.New("notification carries no resolvable user identity")

	// ErrInvalidStatus: the provider reported a subscription status outside
	// the terminal set; nothing is mutated.
	ErrInvalidStatus = errors.New("subscription status outside the terminal set")
)
