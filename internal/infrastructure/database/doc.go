// Package database provides SQLite persistence for Kinesis Core.
//
// It wraps database/sql with lifecycle management (directory creation, WAL
// mode, restrictive file permissions), health checks, and an embedded
// migration runner. Custom presets and the session log live here; the
// control loop itself never touches the database.
//
// # Usage
//
//	db, err := database.Open(database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
