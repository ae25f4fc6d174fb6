// Package database provides SQLite connectivity for MeloHub Core.
//
// It owns the connection (WAL mode, busy timeout, single pooled
// connection to match SQLite's single-writer model) and the embedded
// schema migrations. The database file is created with 0600
// permissions and all queries go through parameterised statements.
//
// Typical startup:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive-only: new columns are nullable or carry
// defaults, and columns are never dropped or renamed. Each migration
// ships as an .up.sql/.down.sql pair embedded in the binary.
package database
