// Package storage is the relational persistence layer of the site: the
// administrator credential store, the session token store, and a generic
// record repository used by the projects, partners and certificates tables.
//
// Both PostgreSQL (github.com/lib/pq, driver "postgres") and SQLite
// (github.com/mattn/go-sqlite3, driver "sqlite3") are supported. Queries use
// ordered $N placeholders, which both drivers accept, and every timestamp is
// written from Go in UTC truncated to whole seconds so comparisons behave
// the same on both engines.
//
//	db, err := storage.Open(cfg.Database)
//	if err != nil { ... }
//	if err := storage.Migrate(ctx, db, cfg.Database.Driver); err != nil { ... }
//
//	admins := storage.NewAdminStore(db)
//	tokens := storage.NewTokenStore(db)
package storage
