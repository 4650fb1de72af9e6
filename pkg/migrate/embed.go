package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

// EmbeddedDir is the directory of the SQL files inside Embedded.
const EmbeddedDir = "migrations"

// Embedded carries the SQL migrations compiled into the binary.
//
//go:embed migrations/*.sql
var Embedded embed.FS

var baseFSMu sync.Mutex

// RunEmbedded executes a goose command against the compiled-in migrations.
func RunEmbedded(ctx context.Context, db *sql.DB, command string, args ...string) error {
	baseFSMu.Lock()
	defer baseFSMu.Unlock()

	goose.SetBaseFS(Embedded)
	defer goose.SetBaseFS(nil)

	if err := Run(ctx, db, EmbeddedDir, command, args...); err != nil {
		return fmt.Errorf("embedded migrations: %w", err)
	}
	return nil
}
