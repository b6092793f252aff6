package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	tmpDir := t.TempDir()

	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store}
}

func TestGrantSequence(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	storage := NewGrantStorage(db, logger)
	ctx := context.Background()

	// Appends assign dense 1-based indexes
	for i, token := range []string{"tok-1", "tok-2", "tok-3"} {
		index, err := storage.AppendGrant(ctx, &models.IntegrationGrant{
			InstallationID: "inst",
			AccessToken:    token,
		})
		if err != nil {
			t.Fatalf("Failed to append grant: %v", err)
		}
		if index != i+1 {
			t.Fatalf("Expected index %d, got %d", i+1, index)
		}
	}

	count, err := storage.CountGrants(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 grants, got %d", count)
	}

	// Lookup past the end terminates the sequence
	if _, err := storage.GrantAt(ctx, 4); !errors.Is(err, interfaces.ErrNoGrant) {
		t.Fatalf("Expected ErrNoGrant past end, got %v", err)
	}

	// Removing the middle grant compacts the sequence
	if err := storage.RemoveGrant(ctx, 2); err != nil {
		t.Fatalf("Failed to remove grant: %v", err)
	}

	grant, err := storage.GrantAt(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to get compacted grant: %v", err)
	}
	if grant.AccessToken != "tok-3" {
		t.Fatalf("Expected tok-3 at index 2 after compaction, got %s", grant.AccessToken)
	}
	if _, err := storage.GrantAt(ctx, 3); !errors.Is(err, interfaces.ErrNoGrant) {
		t.Fatalf("Expected ErrNoGrant at old tail, got %v", err)
	}
}

func TestUserSessionLookup(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	storage := NewUserStorage(db, logger)
	ctx := context.Background()

	user := &models.User{
		ExternalID: 4242,
		Username:   "octocat",
		Email:      "octo@example.com",
		SessionID:  "sess-1",
	}
	if err := storage.StoreUser(ctx, user); err != nil {
		t.Fatalf("Failed to store user: %v", err)
	}

	found, err := storage.GetUserBySession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Failed to find user by session: %v", err)
	}
	if found.ExternalID != 4242 {
		t.Fatalf("Expected external id 4242, got %d", found.ExternalID)
	}

	// Re-registration moves the session binding
	user.SessionID = "sess-2"
	if err := storage.StoreUser(ctx, user); err != nil {
		t.Fatalf("Failed to re-store user: %v", err)
	}
	if _, err := storage.GetUserBySession(ctx, "sess-1"); !errors.Is(err, interfaces.ErrKeyNotFound) {
		t.Fatalf("Expected stale session miss, got %v", err)
	}
	if _, err := storage.GetUserBySession(ctx, "sess-2"); err != nil {
		t.Fatalf("Expected fresh session hit, got %v", err)
	}

	count, err := storage.CountUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 user after upsert, got %d", count)
	}
}
