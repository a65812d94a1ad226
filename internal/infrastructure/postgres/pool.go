package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/pos-inventario/pkg/config"
)

// NewPool abre el pool con el DSN y los límites de la configuración.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	return openPool(ctx, cfg.ConnectionString(), cfg.MaxConns, cfg.MinConns)
}

// NewPoolFromDSN abre un pool con límites por defecto (tests de integración).
func NewPoolFromDSN(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return openPool(ctx, dsn, 0, 0)
}

func openPool(ctx context.Context, dsn string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if maxConns > 0 {
		pc.MaxConns = maxConns
	}
	if minConns > 0 && minConns <= pc.MaxConns {
		pc.MinConns = minConns
	}
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute

	// NUMERIC <-> decimal.Decimal en cada conexión nueva.
	pc.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}
