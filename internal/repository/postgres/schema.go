package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every embedded migration in name order. Each file is
// idempotent, so running it against an existing schema is a no-op.
func (db *DB) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := db.Pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf(errFailedMigrateFmt, name, err)
		}
	}
	return nil
}

// EnsureUser inserts the bootstrap account when its email is not taken.
func (db *DB) EnsureUser(ctx context.Context, email, name, passwordHash, role string) error {
	query := `INSERT INTO users (email, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING`

	if _, err := db.Pool.Exec(ctx, query, email, name, passwordHash, role); err != nil {
		return fmt.Errorf(errFailedEnsureUserFmt, err)
	}
	return nil
}
