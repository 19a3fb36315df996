package postgres

import (
    "context"
    "embed"
    "fmt"

    "github.com/jackc/pgx/v5/stdlib"
    "github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date. The same files work with the goose
// CLI (`goose -dir internal/adapters/postgres/migrations postgres $DATABASE_URL up`).
func (db *DB) Migrate(ctx context.Context) error {
    goose.SetBaseFS(migrations)
    if err := goose.SetDialect("postgres"); err != nil {
        return err
    }
    sqlDB := stdlib.OpenDBFromPool(db.Pool)
    defer sqlDB.Close()
    if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
        return fmt.Errorf("migrate: %w", err)
    }
    return nil
}
