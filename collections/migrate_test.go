package collections_test

import (
	"testing"

	"quotecraft/collections"
	"quotecraft/testhelpers"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// saveLegacyQuote writes a quote record the way pre-revision data looked:
// no root_id and no version.
func saveLegacyQuote(t *testing.T, app *pocketbase.PocketBase, customerID string) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		t.Fatalf("find quotes collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("customer", customerID)
	record.Set("title", "Legacy Quote")
	record.Set("status", "draft")
	// Bypass validation: legacy records predate the required version field.
	if err := app.SaveNoValidate(record); err != nil {
		t.Fatalf("save legacy quote: %v", err)
	}
	return record
}

func TestMigrateQuoteRoots_BackfillsRootAndVersion(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Legacy Müşteri")
	legacy := saveLegacyQuote(t, app, customer.Id)

	if err := collections.MigrateQuoteRoots(app); err != nil {
		t.Fatalf("MigrateQuoteRoots() failed: %v", err)
	}

	migrated, err := app.FindRecordById("quotes", legacy.Id)
	if err != nil {
		t.Fatalf("reload quote: %v", err)
	}
	if migrated.GetString("root_id") != legacy.Id {
		t.Errorf("expected root_id %s, got %q", legacy.Id, migrated.GetString("root_id"))
	}
	if migrated.GetInt("version") != 1 {
		t.Errorf("expected version 1, got %d", migrated.GetInt("version"))
	}
}

func TestMigrateQuoteRoots_LeavesMigratedRecordsAlone(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Yerleşik Müşteri")

	// Already carries a root pointing at another cluster head.
	quote := testhelpers.CreateTestRevision(t, app, customer.Id, "someotherroot00", 3, "sent")

	if err := collections.MigrateQuoteRoots(app); err != nil {
		t.Fatalf("MigrateQuoteRoots() failed: %v", err)
	}

	reloaded, err := app.FindRecordById("quotes", quote.Id)
	if err != nil {
		t.Fatalf("reload quote: %v", err)
	}
	if reloaded.GetString("root_id") != "someotherroot00" {
		t.Errorf("root_id was rewritten: got %q", reloaded.GetString("root_id"))
	}
	if reloaded.GetInt("version") != 3 {
		t.Errorf("version was rewritten: got %d", reloaded.GetInt("version"))
	}
}

func TestMigrateQuoteRoots_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Legacy Müşteri")
	legacy := saveLegacyQuote(t, app, customer.Id)

	if err := collections.MigrateQuoteRoots(app); err != nil {
		t.Fatalf("first MigrateQuoteRoots() failed: %v", err)
	}
	if err := collections.MigrateQuoteRoots(app); err != nil {
		t.Fatalf("second MigrateQuoteRoots() failed: %v", err)
	}

	migrated, _ := app.FindRecordById("quotes", legacy.Id)
	if migrated.GetString("root_id") != legacy.Id {
		t.Errorf("expected root_id %s after second run, got %q", legacy.Id, migrated.GetString("root_id"))
	}
	if migrated.GetInt("version") != 1 {
		t.Errorf("expected version 1 after second run, got %d", migrated.GetInt("version"))
	}
}
