package kpitemplatestore_test

import (
	"errors"
	"testing"

	kpitemplatestore "github.com/dalemusser/coachhub/internal/app/store/kpitemplates"
	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := kpitemplatestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.KPITemplate{
		Name:        "출석률",
		Description: "Weekly Attendance",
		Unit:        "%",
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Language != models.DefaultLanguage {
		t.Errorf("Language: got %q, want %q", created.Language, models.DefaultLanguage)
	}
	if created.DescriptionCI != "weekly attendance" {
		t.Errorf("DescriptionCI: got %q", created.DescriptionCI)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "출석률" || got.Unit != "%" || !got.IsActive {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := kpitemplatestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, kpierr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := kpitemplatestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tpl := fixtures.CreateTemplate(ctx, "Reading", "pages", true)

	updated, err := store.Update(ctx, tpl.ID, models.KPITemplate{
		Name:     "Reading Minutes",
		Unit:     "minutes",
		Language: "en",
		IsActive: false,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Reading Minutes" || updated.NameCI != "reading minutes" {
		t.Errorf("name not updated: %+v", updated)
	}
	if updated.IsActive {
		t.Error("expected template to be deactivated")
	}

	_, err = store.Update(ctx, primitive.NewObjectID(), models.KPITemplate{Name: "x", Unit: "y"})
	if !errors.Is(err, kpierr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := kpitemplatestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tpl := fixtures.CreateTemplate(ctx, "Homework", "건", true)

	n, err := store.Delete(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}
	n, err = store.Delete(ctx, tpl.ID)
	if err != nil || n != 0 {
		t.Errorf("second Delete: n=%d err=%v", n, err)
	}
}

func TestStore_List_FiltersAndPages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := kpitemplatestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateTemplate(ctx, "Alpha Reading", "pages", true)
	fixtures.CreateTemplate(ctx, "Beta Reading", "pages", false)
	fixtures.CreateTemplate(ctx, "Gamma Writing", "words", true)
	fixtures.CreateTemplate(ctx, "Delta Reading", "pages", true)

	active := true
	rows, _, err := store.List(ctx, kpitemplatestore.ListFilter{Query: "READ", Active: &active},
		paging.Page{Limit: 10}.Keyset(false))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 active reading templates, got %d", len(rows))
	}
	if rows[0].Name != "Alpha Reading" || rows[1].Name != "Delta Reading" {
		t.Errorf("unexpected order: %q, %q", rows[0].Name, rows[1].Name)
	}

	first, info, err := store.List(ctx, kpitemplatestore.ListFilter{}, paging.Page{Limit: 3}.Keyset(false))
	if err != nil {
		t.Fatalf("List page 1 failed: %v", err)
	}
	if len(first) != 3 || !info.HasNext || info.NextCursor == "" {
		t.Fatalf("page 1: len=%d info=%+v", len(first), info)
	}
	second, info2, err := store.List(ctx, kpitemplatestore.ListFilter{},
		paging.Page{Limit: 3, After: info.NextCursor}.Keyset(false))
	if err != nil {
		t.Fatalf("List page 2 failed: %v", err)
	}
	if len(second) != 1 || second[0].Name != "Gamma Writing" {
		t.Errorf("page 2: %+v", second)
	}
	if info2.HasNext || !info2.HasPrev {
		t.Errorf("page 2 info: %+v", info2)
	}
}

func TestStore_ListAll_Excludes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := kpitemplatestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateTemplate(ctx, "A", "u", true)
	fixtures.CreateTemplate(ctx, "B", "u", true)

	rows, err := store.ListAll(ctx, kpitemplatestore.ListFilter{ExcludeIDs: []primitive.ObjectID{a.ID}})
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "B" {
		t.Errorf("expected only B, got %+v", rows)
	}

	m, err := store.GetMany(ctx, []primitive.ObjectID{a.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(m) != 1 {
		t.Errorf("GetMany: expected 1 hit, got %d", len(m))
	}
}
