package txn

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// latchUnsupported marks the server as transaction-less for one test.
func latchUnsupported(t *testing.T) {
	t.Helper()
	prev := unsupported.Load()
	unsupported.Store(true)
	t.Cleanup(func() { unsupported.Store(prev) })
}

func TestRun_FallbackHasNoTransaction(t *testing.T) {
	latchUnsupported(t)

	var sawTxn, ran bool
	err := Run(context.Background(), nil, zap.NewNop(), func(ctx context.Context) error {
		ran = true
		sawTxn = InTransaction(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ran {
		t.Fatal("fn was not called")
	}
	if sawTxn {
		t.Error("InTransaction reported true on the standalone fallback")
	}
	if Supported() {
		t.Error("Supported() = true after the server refused transactions")
	}
}

func TestRun_FallbackReturnsFnError(t *testing.T) {
	latchUnsupported(t)

	want := errors.New("detail write failed")
	err := Run(context.Background(), nil, zap.NewNop(), func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("Run error = %v, want %v", err, want)
	}
}

func TestRun_AgainstServer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// A standalone mongod refuses the transaction and Run retries without
	// one; a replica set commits it. Either way both writes land and
	// InTransaction agrees with Supported.
	var sawTxn bool
	err := Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		sawTxn = InTransaction(ctx)
		if _, err := db.Collection("team_kpi_details").InsertOne(ctx, bson.M{"name": "Reading"}); err != nil {
			return err
		}
		_, err := db.Collection("team_kpi_goals").InsertOne(ctx, bson.M{"name": "Spring literacy"})
		return err
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sawTxn != Supported() {
		t.Errorf("InTransaction = %v, Supported = %v", sawTxn, Supported())
	}
	n, err := db.Collection("team_kpi_details").CountDocuments(ctx, bson.M{})
	if err != nil || n != 1 {
		t.Errorf("details = %d (%v), want 1", n, err)
	}
}

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"validation failure", mongo.CommandError{Code: 121, Message: "Document failed validation"}, false},
		{"duplicate key", errors.New("E11000 duplicate key error collection: coachhub.program_kpis"), false},
		{"standalone mongod", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"illegal operation", mongo.CommandError{Code: 263, Message: "Cannot run 'create' in a multi-document transaction"}, true},
		{"wrapped standalone", fmt.Errorf("approve kpi submission: %w", mongo.CommandError{Code: 20}), true},
		{"driver session message", errors.New("Current topology does not support sessions: session operations are NOT SUPPORTED"), true},
		{"plain transaction abort", errors.New("transaction aborted"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
