package paramrole

import (
	"context"
	"fmt"
	"time"

	"github.com/fernandezvara/dbkit"
)

// Transaction executes a function within a database transaction with automatic
// commit/rollback. If the function returns an error, the transaction is rolled
// back; otherwise it is committed.
//
// Register and the grant operations use this internally so their
// read-then-write sequences are atomic; callers can also use it to group
// several engine calls.
//
// Example:
//
//	err := service.Transaction(ctx, func(ctx context.Context) error {
//	    if _, err := service.AddGlobalRole(ctx, user, member); err != nil {
//	        return err // rollback
//	    }
//	    _, err := service.AddLocalRole(ctx, order, user, referrer)
//	    return err // nil commits
//	})
func (s *Service) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()
	var err error

	// A nested call reuses the surrounding transaction through a savepoint.
	// The open transaction travels in the context so every service call made
	// from fn joins it.
	if tx := txFromContext(ctx); tx != nil {
		err = tx.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(withTx(ctx, tx))
		})
	} else if db, ok := s.db.(*dbkit.DBKit); ok {
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(withTx(ctx, tx))
		})
	} else {
		err = fmt.Errorf("transaction support requires a dbkit.DBKit instance")
	}

	duration := time.Since(start)
	s.txMonitor.recordTransaction(duration, err == nil)

	return err
}

// TransactionWithOptions executes a function within a database transaction
// with custom options: read-only transactions, isolation levels, and other
// transaction parameters.
//
// Example:
//
//	err := service.TransactionWithOptions(ctx, dbkit.SerializableTxOptions(), func(ctx context.Context) error {
//	    _, err := service.Register(ctx, "gas_member", params)
//	    return err
//	})
func (s *Service) TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context) error) error {
	start := time.Now()
	var err error

	if tx := txFromContext(ctx); tx != nil {
		// Nested transactions use savepoints; options apply to the outermost only.
		err = tx.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(withTx(ctx, tx))
		})
	} else if db, ok := s.db.(*dbkit.DBKit); ok {
		err = db.TransactionWithOptions(ctx, opts, func(tx *dbkit.Tx) error {
			return fn(withTx(ctx, tx))
		})
	} else {
		err = fmt.Errorf("transaction support requires a dbkit.DBKit instance")
	}

	duration := time.Since(start)
	s.txMonitor.recordTransaction(duration, err == nil)

	return err
}

// ReadOnlyTransaction executes a function within a read-only database
// transaction. ResolveRoles uses this so a whole resolution reads a single
// consistent snapshot.
//
// Example:
//
//	err := service.ReadOnlyTransaction(ctx, func(ctx context.Context) error {
//	    roles, err := service.ResolveRoles(ctx, principal, nil)
//	    ...
//	    return err
//	})
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), fn)
}
