package health

import (
	"context"
	"fmt"
	"time"

	"github.com/aatuh/surreal-migrate/ports"
)

// BasicChecker implements a basic health check that always returns healthy.
type BasicChecker struct{}

func NewBasicChecker() ports.HealthChecker {
	return &BasicChecker{}
}

func (c *BasicChecker) Name() string {
	return "basic"
}

func (c *BasicChecker) Check(ctx context.Context) ports.HealthResult {
	return ports.HealthResult{
		Status:    ports.HealthStatusHealthy,
		Message:   "Basic health check passed",
		Timestamp: time.Now(),
	}
}

// ConnChecker reports readiness by calling InfoForDB on the migration
// engine's database connection — the same introspection call the
// ledger gateway uses to discover the migrations table.
type ConnChecker struct {
	conn ports.Conn
}

func NewConnChecker(conn ports.Conn) ports.HealthChecker {
	return &ConnChecker{conn: conn}
}

func (c *ConnChecker) Name() string {
	return "database"
}

func (c *ConnChecker) Check(ctx context.Context) ports.HealthResult {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tables, err := c.conn.InfoForDB(checkCtx)
	duration := time.Since(start)

	if err != nil {
		return ports.HealthResult{
			Status:    ports.HealthStatusUnhealthy,
			Message:   fmt.Sprintf("database introspection failed: %v", err),
			Timestamp: time.Now(),
			Duration:  duration,
		}
	}

	return ports.HealthResult{
		Status:    ports.HealthStatusHealthy,
		Message:   "database connection healthy",
		Details:   map[string]interface{}{"tables": len(tables)},
		Timestamp: time.Now(),
		Duration:  duration,
	}
}
