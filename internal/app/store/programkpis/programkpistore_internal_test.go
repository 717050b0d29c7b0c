package programkpistore

import (
	"testing"

	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestInsertAll_FailedBatchLeavesNothingBehind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	programID := primitive.NewObjectID()
	existing := models.ProgramKPI{ID: primitive.NewObjectID(), ProgramID: programID, KPIName: "Existing", TargetValue: 1}
	if _, err := store.c.InsertOne(ctx, existing); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// The second document reuses the seeded _id, so the server refuses it
	// after the first one was accepted.
	first := models.ProgramKPI{ID: primitive.NewObjectID(), ProgramID: programID, KPIName: "First", TargetValue: 2}
	clash := models.ProgramKPI{ID: existing.ID, ProgramID: programID, KPIName: "Clash", TargetValue: 3}
	err := store.insertAll(ctx, []interface{}{first, clash}, []primitive.ObjectID{first.ID, clash.ID})
	if err == nil {
		t.Fatal("expected the duplicate _id to fail the batch")
	}

	n, err := store.c.CountDocuments(ctx, bson.M{"program_id": programID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("program KPIs = %d, want only the seeded one", n)
	}
	var kept models.ProgramKPI
	if err := store.c.FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&kept); err != nil || kept.KPIName != "Existing" {
		t.Errorf("seeded KPI changed: %+v (%v)", kept, err)
	}
}
