// Package txn runs multi-document writes in a MongoDB transaction when the
// deployment supports one, and falls back to plain sequential writes on a
// standalone server.
package txn

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ctxKey struct{}

// unsupported latches once the server has refused a transaction.
var unsupported atomic.Bool

// InTransaction reports whether ctx was handed out by Run inside a real
// transaction. Callers use it to decide whether they must compensate
// partial writes themselves.
func InTransaction(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKey{}).(bool)
	return v
}

// Supported reports false once the server has refused a transaction.
func Supported() bool {
	return !unsupported.Load()
}

// Run executes fn inside a transaction on db's client. If the server does
// not support transactions, fn runs again without one and InTransaction
// reports false for its context.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	if unsupported.Load() {
		return fn(ctx)
	}

	sess, err := db.Client().StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(context.WithValue(sc, ctxKey{}, true))
	})
	if err == nil || !IsNotSupported(err) {
		return err
	}

	unsupported.Store(true)
	if log != nil {
		log.Info("transactions not supported; running writes without a transaction", zap.Error(err))
	}
	return fn(ctx)
}

// IsNotSupported reports whether err means the deployment cannot run
// transactions (standalone mongod, or an operation illegal in one).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && (has("replica set") || has("session") || has("illegal operation") || has("not supported")):
		return true
	case has("session") && has("not supported"):
		return true
	}
	return false
}
