package mongodb

import (
	"context"

	storage "github.com/pharmacy-platform/stock-service/pkg/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionManager runs engine operations inside a MongoDB
// transaction. The session context is passed to fn as a plain
// context.Context; the driver routes any collection call made with it
// through the session, so the repositories need no session awareness.
type TransactionManager struct {
	client *storage.InstrumentedClient
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(client *storage.InstrumentedClient) *TransactionManager {
	return &TransactionManager{client: client}
}

// Execute runs fn within a transaction, committing on nil and aborting
// on error
func (t *TransactionManager) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}
