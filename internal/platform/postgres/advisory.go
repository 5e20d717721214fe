package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/store"
)

// advisoryKey derives a stable 64-bit advisory lock key for namespace and id.
func advisoryKey(namespace string, id uuid.UUID) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(namespace))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(id.String()))
	return int64(h.Sum64())
}

// advisoryXactLock blocks until the transaction holds the lock for namespace
// and id. The lock is released when the transaction ends.
func advisoryXactLock(ctx context.Context, tx store.DBTX, namespace string, id uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryKey(namespace, id)); err != nil {
		return fmt.Errorf("failed to take advisory lock %s:%s: %w", namespace, id, err)
	}
	return nil
}
