package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"treinorun-backend/internal/domain/billing"
	"treinorun-backend/internal/domain/users"
	"treinorun-backend/internal/domain/webhooklog"
	"treinorun-backend/internal/infra/mercadopago"
	"treinorun-backend/internal/logger"
	"treinorun-backend/internal/mail"
	"treinorun-backend/internal/repository"
)

// ResourceFetcher is the provider read API the engine consults when a
// notification only carries an id.
type ResourceFetcher interface {
	GetPreapproval(ctx context.Context, id string) (*mercadopago.Preapproval, error)
	GetPayment(ctx context.Context, id string) (*mercadopago.PaymentResource, error)
}

// Reconciler applies canonical webhook events to local state. One database
// transaction per delivery; the provider fetch always happens before the
// transaction opens so no lock is held across a network call.
type Reconciler struct {
	store  repository.Store
	api    ResourceFetcher
	mailer mail.Mailer
	planID string
	log    *logger.Logger
}

// planID is the preapproval plan configured for checkout; deliveries that
// reference a different plan are still reconciled but logged for operators.
func NewReconciler(store repository.Store, api ResourceFetcher, mailer mail.Mailer, planID string, log *logger.Logger) *Reconciler {
	return &Reconciler{store: store, api: api, mailer: mailer, planID: planID, log: log}
}

// ProcessDelivery runs one logged delivery to its terminal outcome. It is the
// worker-pool entry point: errors are recorded on the ingestion log entry, not
// returned, because by this point the provider has already been acknowledged.
func (r *Reconciler) ProcessDelivery(ctx context.Context, entryID string, ev mercadopago.Event) {
	if err := r.Process(ctx, ev); err != nil {
		msg := err.Error()
		if markErr := r.store.WebhookLogs().MarkOutcome(ctx, entryID, webhooklog.StatusError, &msg); markErr != nil {
			r.log.Errorf("webhook %s: failed to record error outcome: %v", entryID, markErr)
		}
		r.log.Errorf("webhook %s: %v", entryID, err)
		return
	}
	if err := r.store.WebhookLogs().MarkOutcome(ctx, entryID, webhooklog.StatusProcessed, nil); err != nil {
		r.log.Errorf("webhook %s: failed to record processed outcome: %v", entryID, err)
	}
}

// Process fetches the referenced resource and reconciles it.
func (r *Reconciler) Process(ctx context.Context, ev mercadopago.Event) error {
	switch ev.Type {
	case mercadopago.EventSubscription:
		sub, err := r.api.GetPreapproval(ctx, ev.ID)
		if err != nil {
			return err
		}
		return r.applySubscription(ctx, ev.ID, sub)
	case mercadopago.EventPayment:
		pay, err := r.api.GetPayment(ctx, ev.ID)
		if err != nil {
			return err
		}
		return r.applyPayment(ctx, pay)
	default:
		return nil
	}
}

func (r *Reconciler) applySubscription(ctx context.Context, providerID string, sub *mercadopago.Preapproval) error {
	status := mercadopago.NormalizeSubscriptionStatus(sub.Status)
	if !billing.TerminalSubscriptionStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, sub.Status)
	}

	// The provider is the source of truth for which plan was subscribed; a
	// mismatch with the configured plan is suspicious but not fatal.
	if r.planID != "" && sub.PreapprovalPlanID != "" && sub.PreapprovalPlanID != r.planID {
		r.log.Warnf("preapproval %s references plan %s, configured plan is %s", providerID, sub.PreapprovalPlanID, r.planID)
	}

	var notifyEmail, notifyName string
	err := r.store.Transaction(ctx, func(tx repository.Store) error {
		user, err := resolveUser(ctx, tx, sub.ExternalReference, sub.PayerEmail)
		if err != nil {
			return err
		}

		if sub.PreapprovalPlanID != "" {
			if err := tx.Users().SetPreapprovalPlan(ctx, user.ID, sub.PreapprovalPlanID); err != nil {
				return err
			}
		}

		prev, err := tx.Subscriptions().ByProviderID(ctx, providerID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := tx.Subscriptions().Upsert(ctx, &billing.Subscription{
			ProviderSubscriptionID: providerID,
			UserID:                 user.ID,
			Status:                 status,
			UpdatedAt:              time.Now(),
		}); err != nil {
			return err
		}

		// Mail only on the transition into authorized; replaying an
		// already-authorized event repeats the upsert but not the mail.
		if status == billing.SubscriptionAuthorized && (prev == nil || prev.Status != billing.SubscriptionAuthorized) {
			notifyEmail, notifyName = user.Email, user.Name
		}
		return nil
	})
	if err != nil {
		return err
	}

	if notifyEmail != "" {
		r.sendConfirmation(notifyEmail, notifyName)
	}
	return nil
}

func (r *Reconciler) applyPayment(ctx context.Context, pay *mercadopago.PaymentResource) error {
	if pay.Status != billing.PaymentApproved {
		r.log.Infof("payment %s in status %q, nothing to reconcile", pay.ID.String(), pay.Status)
		return nil
	}

	var notifyEmail, notifyName string
	err := r.store.Transaction(ctx, func(tx repository.Store) error {
		providerID := pay.ID.String()

		if _, err := tx.Payments().ByProviderID(ctx, providerID); err == nil {
			// Redelivery of an already-applied payment: acknowledge, no side effects.
			r.log.Infof("payment %s already recorded, skipping", providerID)
			return nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		user, err := resolveUser(ctx, tx, pay.ExternalReference, pay.Payer.Email)
		if err != nil {
			return err
		}

		var method *string
		if pay.PaymentMethodID != "" {
			m := pay.PaymentMethodID
			method = &m
		}
		created, err := tx.Payments().Create(ctx, &billing.Payment{
			ProviderPaymentID: providerID,
			UserID:            user.ID,
			Status:            pay.Status,
			Amount:            pay.TransactionAmount,
			Method:            method,
			ApprovedAt:        pay.DateApproved,
		})
		if err != nil {
			return err
		}
		if !created {
			// Lost the insert race to a concurrent delivery of the same id.
			return nil
		}

		if err := tx.Users().UpdateTier(ctx, user.ID, users.TierPaid); err != nil {
			return err
		}
		notifyEmail, notifyName = user.Email, user.Name
		return nil
	})
	if err != nil {
		return err
	}

	if notifyEmail != "" {
		r.sendConfirmation(notifyEmail, notifyName)
	}
	return nil
}

// sendConfirmation runs after the transaction committed; a mail failure must
// not undo a reconciled payment, so it is only logged.
func (r *Reconciler) sendConfirmation(email, name string) {
	if err := r.mailer.SendPaymentConfirmation(email, name); err != nil {
		r.log.Errorf("failed to send confirmation mail to %s: %v", email, err)
		return
	}
	r.log.Infof("confirmation mail sent to %s", email)
}

// resolveUser finds or creates the owning user for a provider resource.
// Resolution order: numeric external reference as a local user id, then payer
// email, then an email smuggled through the external reference. With no
// identity at all the delivery is a hard error.
func resolveUser(ctx context.Context, tx repository.Store, externalRef, payerEmail string) (*users.User, error) {
	externalRef = strings.TrimSpace(externalRef)
	payerEmail = strings.TrimSpace(payerEmail)

	if externalRef != "" {
		if id, err := strconv.ParseUint(externalRef, 10, 64); err == nil {
			u, err := tx.Users().ByID(ctx, uint(id))
			if err == nil {
				return u, nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
		}
	}

	email := payerEmail
	if email == "" && strings.Contains(externalRef, "@") {
		email = externalRef
	}
	if email == "" {
		return nil, ErrMissingIdentity
	}

	u, err := tx.Users().ByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	created := &users.User{Email: email, Tier: users.TierFree}
	if err := tx.Users().Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}
