package db

import (
	"database/sql"
)

// Database is a connection that must be opened before DB is used. The local cache
// is the only implementation.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
