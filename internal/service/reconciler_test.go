package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/pixmint/pixmint/internal/model"
	"github.com/pixmint/pixmint/internal/testutil"
)

func newTestReconciler(store UserStore) *Reconciler {
	return NewReconciler(store, slog.Default(), nil)
}

func createdEvent(externalID, email string) *model.IdentityEvent {
	return &model.IdentityEvent{
		Kind: model.EventUserCreated,
		Data: model.IdentityProfile{
			ID:             externalID,
			EmailAddresses: []model.EmailEntry{{EmailAddress: email}},
			FirstName:      testutil.StrPtr("Ada"),
			LastName:       testutil.StrPtr("Lovelace"),
		},
	}
}

func TestReconciler_Created(t *testing.T) {
	store := testutil.NewMemUserStore()
	r := newTestReconciler(store)
	ctx := context.Background()

	result, err := r.Apply(ctx, createdEvent("ext_1", "x@y.com"))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if result.User == nil {
		t.Fatal("expected a user in the result")
	}
	if result.User.Email != "x@y.com" {
		t.Errorf("expected email x@y.com, got %q", result.User.Email)
	}
	if result.User.ExternalID == nil || *result.User.ExternalID != "ext_1" {
		t.Error("expected external id ext_1 on the stored record")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 stored record, got %d", store.Len())
	}
}

func TestReconciler_CreatedRedelivery(t *testing.T) {
	store := testutil.NewMemUserStore()
	r := newTestReconciler(store)
	ctx := context.Background()

	first, err := r.Apply(ctx, createdEvent("ext_1", "x@y.com"))
	if err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}

	second, err := r.Apply(ctx, createdEvent("ext_1", "x@y.com"))
	if err != nil {
		t.Fatalf("redelivery must not fail: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("redelivery must not add a record, got %d", store.Len())
	}
	if first.User.ID != second.User.ID {
		t.Errorf("redelivery changed the record id: %q vs %q", first.User.ID, second.User.ID)
	}
}

func TestReconciler_CreatedThenUpdated(t *testing.T) {
	// Created for ext_1 with x@y.com, then an update changing only the
	// last name. Email must survive, last name must not.
	store := testutil.NewMemUserStore()
	r := newTestReconciler(store)
	ctx := context.Background()

	if _, err := r.Apply(ctx, createdEvent("ext_1", "x@y.com")); err != nil {
		t.Fatalf("created failed: %v", err)
	}

	update := &model.IdentityEvent{
		Kind: model.EventUserUpdated,
		Data: model.IdentityProfile{
			ID:       "ext_1",
			LastName: testutil.StrPtr("Byron"),
		},
	}
	result, err := r.Apply(ctx, update)
	if err != nil {
		t.Fatalf("updated failed: %v", err)
	}

	if result.User.LastName != "Byron" {
		t.Errorf("expected last name Byron, got %q", result.User.LastName)
	}
	if result.User.FirstName != "Ada" {
		t.Errorf("update must not clobber first name, got %q", result.User.FirstName)
	}
	if result.User.Email != "x@y.com" {
		t.Errorf("update must keep the original email, got %q", result.User.Email)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 stored record, got %d", store.Len())
	}
}

func TestReconciler_UpdatedBeforeCreated(t *testing.T) {
	// Delivery order is not guaranteed: an update with no prior record
	// creates one from the partial data instead of failing.
	store := testutil.NewMemUserStore()
	r := newTestReconciler(store)
	ctx := context.Background()

	update := &model.IdentityEvent{
		Kind: model.EventUserUpdated,
		Data: model.IdentityProfile{
			ID:        "ext_2",
			FirstName: testutil.StrPtr("Grace"),
		},
	}
	result, err := r.Apply(ctx, update)
	if err != nil {
		t.Fatalf("update without prior record must not fail: %v", err)
	}

	if result.User.FirstName != "Grace" {
		t.Errorf("expected first name Grace, got %q", result.User.FirstName)
	}

	// The late-arriving create merges into the same record.
	created := createdEvent("ext_2", "g@h.com")
	merged, err := r.Apply(ctx, created)
	if err != nil {
		t.Fatalf("late created failed: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("expected convergence to 1 record, got %d", store.Len())
	}
	if merged.User.ID != result.User.ID {
		t.Error("late created must merge into the existing record")
	}
	if merged.User.Email != "g@h.com" {
		t.Errorf("expected email g@h.com after merge, got %q", merged.User.Email)
	}
}

func TestReconciler_DeletedIdempotent(t *testing.T) {
	store := testutil.NewMemUserStore()
	r := newTestReconciler(store)
	ctx := context.Background()

	if _, err := r.Apply(ctx, createdEvent("ext_3", "z@y.com")); err != nil {
		t.Fatalf("created failed: %v", err)
	}

	deleted := &model.IdentityEvent{
		Kind: model.EventUserDeleted,
		Data: model.IdentityProfile{ID: "ext_3"},
	}

	first, err := r.Apply(ctx, deleted)
	if err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if !first.Removed {
		t.Error("first delete should remove the record")
	}

	second, err := r.Apply(ctx, deleted)
	if err != nil {
		t.Fatalf("second delete must succeed: %v", err)
	}
	if second.Removed {
		t.Error("second delete should find nothing to remove")
	}

	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d records", store.Len())
	}
}

func TestReconciler_UpdateAfterDeleteResurrects(t *testing.T) {
	// Documented consequence of upsert-on-update with unordered delivery:
	// an update arriving after a delete recreates the record.
	store := testutil.NewMemUserStore()
	r := newTestReconciler(store)
	ctx := context.Background()

	if _, err := r.Apply(ctx, createdEvent("ext_4", "w@y.com")); err != nil {
		t.Fatalf("created failed: %v", err)
	}
	if _, err := r.Apply(ctx, &model.IdentityEvent{
		Kind: model.EventUserDeleted,
		Data: model.IdentityProfile{ID: "ext_4"},
	}); err != nil {
		t.Fatalf("deleted failed: %v", err)
	}

	result, err := r.Apply(ctx, &model.IdentityEvent{
		Kind: model.EventUserUpdated,
		Data: model.IdentityProfile{ID: "ext_4", FirstName: testutil.StrPtr("Alan")},
	})
	if err != nil {
		t.Fatalf("update after delete failed: %v", err)
	}

	if result.User == nil {
		t.Fatal("expected a resurrected record")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 record, got %d", store.Len())
	}
}

func TestReconciler_CreatedWithoutEmail(t *testing.T) {
	store := testutil.NewMemUserStore()
	r := newTestReconciler(store)

	evt := &model.IdentityEvent{
		Kind: model.EventUserCreated,
		Data: model.IdentityProfile{ID: "ext_5"},
	}
	_, err := r.Apply(context.Background(), evt)
	if !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}
	if store.Len() != 0 {
		t.Error("invalid event must not mutate the store")
	}
}

func TestReconciler_MissingExternalID(t *testing.T) {
	store := testutil.NewMemUserStore()
	r := newTestReconciler(store)
	ctx := context.Background()

	for _, kind := range []model.EventKind{model.EventUserCreated, model.EventUserUpdated, model.EventUserDeleted} {
		evt := &model.IdentityEvent{
			Kind: kind,
			Data: model.IdentityProfile{
				EmailAddresses: []model.EmailEntry{{EmailAddress: "x@y.com"}},
			},
		}
		if _, err := r.Apply(ctx, evt); !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("kind %v: expected ErrInvalidEvent, got %v", kind, err)
		}
	}
}

func TestReconciler_UnknownKind(t *testing.T) {
	r := newTestReconciler(testutil.NewMemUserStore())

	evt := &model.IdentityEvent{Kind: model.EventUnknown}
	_, err := r.Apply(context.Background(), evt)
	if !errors.Is(err, ErrUnhandledEventKind) {
		t.Errorf("expected ErrUnhandledEventKind, got %v", err)
	}
}

func TestReconciler_EmailNormalized(t *testing.T) {
	store := testutil.NewMemUserStore()
	r := newTestReconciler(store)

	result, err := r.Apply(context.Background(), createdEvent("ext_6", "  Mixed@Case.COM "))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if result.User.Email != "mixed@case.com" {
		t.Errorf("expected normalized email, got %q", result.User.Email)
	}
}
