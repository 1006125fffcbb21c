package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixmint/pixmint/internal/metrics"
	"github.com/pixmint/pixmint/internal/model"
	"github.com/pixmint/pixmint/internal/repository"
)

// Reconciler errors.
var (
	// ErrInvalidEvent marks deliveries that decode but miss required data.
	ErrInvalidEvent = errors.New("invalid event data")
	// ErrUnhandledEventKind is returned if an unknown kind reaches Apply.
	// The gateway acknowledges unknown kinds before dispatching, so this
	// indicates a programming error.
	ErrUnhandledEventKind = errors.New("unhandled event kind")
)

// Reconciler maps identity-provider events onto user repository mutations.
//
// Policy: created and updated both upsert keyed by external id. Redelivered
// or out-of-order events merge into the stored record instead of failing;
// deletes of absent records succeed. The same policy is applied to both
// kinds - "fail on missing" is deliberately not mixed in. Consequence: an
// update delivered after a delete resurrects the record; with no ordering
// guarantee from the provider this is accepted rather than papered over.
type Reconciler struct {
	users   UserStore
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewReconciler creates a Reconciler.
func NewReconciler(users UserStore, logger *slog.Logger, recorder metrics.Recorder) *Reconciler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Reconciler{
		users:   users,
		logger:  logger.With("component", "reconciler"),
		metrics: recorder,
	}
}

// ReconcileResult reports the outcome of applying one event.
type ReconcileResult struct {
	// User is the record after the mutation; nil for deletes.
	User *model.User
	// Removed reports whether a delete found a record to remove.
	Removed bool
}

// Apply executes the repository mutation for one decoded event. It performs
// exactly one mutation and never cascades into dependent records.
func (r *Reconciler) Apply(ctx context.Context, evt *model.IdentityEvent) (*ReconcileResult, error) {
	switch evt.Kind {
	case model.EventUserCreated:
		return r.applyCreated(ctx, &evt.Data)
	case model.EventUserUpdated:
		return r.applyUpdated(ctx, &evt.Data)
	case model.EventUserDeleted:
		return r.applyDeleted(ctx, &evt.Data)
	default:
		return nil, ErrUnhandledEventKind
	}
}

// applyCreated builds a draft from the event and upserts by external id.
func (r *Reconciler) applyCreated(ctx context.Context, profile *model.IdentityProfile) (*ReconcileResult, error) {
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: missing external id", ErrInvalidEvent)
	}

	email, ok := profile.PrimaryEmail()
	if !ok {
		return nil, fmt.Errorf("%w: created event without email address", ErrInvalidEvent)
	}
	email = normalizeEmail(email)

	draft := draftFromProfile(profile)
	draft.Email = email

	patch := patchFromProfile(profile)
	patch.Email = &email

	user, err := r.users.UpsertUserByExternalID(ctx, draft, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile created event: %w", err)
	}

	r.logger.Info("user reconciled",
		"event", model.EventUserCreated.String(),
		"external_id", profile.ID,
		"user_id", user.ID,
	)
	r.metrics.IncEventProcessed(model.EventUserCreated.String())
	r.metrics.IncUserCreated()

	return &ReconcileResult{User: user}, nil
}

// applyUpdated upserts by external id with the same policy as created:
// a missing prior record is created from the partial update rather than
// treated as an error, since delivery order is not guaranteed.
func (r *Reconciler) applyUpdated(ctx context.Context, profile *model.IdentityProfile) (*ReconcileResult, error) {
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: missing external id", ErrInvalidEvent)
	}

	draft := draftFromProfile(profile)
	if email, ok := profile.PrimaryEmail(); ok {
		draft.Email = normalizeEmail(email)
	}

	patch := patchFromProfile(profile)
	if draft.Email != "" {
		email := draft.Email
		patch.Email = &email
	}

	user, err := r.users.UpsertUserByExternalID(ctx, draft, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile updated event: %w", err)
	}

	r.logger.Info("user reconciled",
		"event", model.EventUserUpdated.String(),
		"external_id", profile.ID,
		"user_id", user.ID,
	)
	r.metrics.IncEventProcessed(model.EventUserUpdated.String())
	r.metrics.IncUserUpdated()

	return &ReconcileResult{User: user}, nil
}

// applyDeleted removes by external id; absence is success (idempotent).
func (r *Reconciler) applyDeleted(ctx context.Context, profile *model.IdentityProfile) (*ReconcileResult, error) {
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: missing external id", ErrInvalidEvent)
	}

	removed, err := r.users.DeleteUserByExternalID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile deleted event: %w", err)
	}

	r.logger.Info("user reconciled",
		"event", model.EventUserDeleted.String(),
		"external_id", profile.ID,
		"removed", removed,
	)
	r.metrics.IncEventProcessed(model.EventUserDeleted.String())
	if removed {
		r.metrics.IncUserDeleted()
	}

	return &ReconcileResult{Removed: removed}, nil
}

// draftFromProfile builds the insert side of an upsert. Name fields missing
// from the event default to the empty string.
func draftFromProfile(profile *model.IdentityProfile) *model.User {
	externalID := profile.ID
	now := time.Now().UTC()

	draft := &model.User{
		ID:         newRecordID(),
		ExternalID: &externalID,
		Username:   profile.Username,
		PhotoURL:   profile.ImageURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if profile.FirstName != nil {
		draft.FirstName = *profile.FirstName
	}
	if profile.LastName != nil {
		draft.LastName = *profile.LastName
	}

	return draft
}

// patchFromProfile builds the merge side of an upsert: only fields the event
// actually carries overwrite stored values.
func patchFromProfile(profile *model.IdentityProfile) repository.UserPatch {
	return repository.UserPatch{
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		PhotoURL:  profile.ImageURL,
	}
}
