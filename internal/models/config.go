package models

import "time"

// Configuration models

// Config holds database configuration
type Config struct {
	Provider        string        // sqlite, postgres, mysql, mongodb
	URI             string        // Connection URI or DSN
	Database        string        // Database name
	MaxOpenConns    int           // Pool size, relational only
	MaxIdleConns    int           // Idle pool size, relational only
	ConnMaxLifetime time.Duration // Connection recycling, relational only
}
