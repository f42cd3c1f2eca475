package paramrole

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// HealthService exposes connectivity checks over the engine's database
// handle. It always operates on the root handle, never on an open
// transaction.
type HealthService struct {
	*Service
}

func NewHealthService(service *Service) *HealthService {
	return &HealthService{Service: service}
}

// Health reports the full status of the backing connection: reachability,
// latency and pool numbers when the handle is a DBKit instance, a bare
// reachability flag otherwise.
func (hs *HealthService) Health(ctx context.Context) dbkit.HealthStatus {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.Health(ctx)
	}

	return dbkit.HealthStatus{
		Healthy: hs.IsHealthy(ctx),
		Error:   "Limited health check - not a DBKit instance",
	}
}

// IsHealthy reports whether the database answers at all.
func (hs *HealthService) IsHealthy(ctx context.Context) bool {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.IsHealthy(ctx)
	}
	return hs.Ping(ctx) == nil
}

// GetPoolStats returns connection pool counters, or zero values when the
// handle carries no pool.
func (hs *HealthService) GetPoolStats() dbkit.PoolStats {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return dbkit.PoolStatsFromSQL(db.Stats())
	}
	return dbkit.PoolStats{}
}

// Ping runs a one-row check query against the database.
func (hs *HealthService) Ping(ctx context.Context) error {
	var result int
	return hs.db.NewSelect().Model((*struct{})(nil)).ColumnExpr("1").Limit(1).Scan(ctx, &result)
}
