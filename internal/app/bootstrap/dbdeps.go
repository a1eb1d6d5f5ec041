// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// DBDeps holds the backend handles for the app. Neither has performed any
// I/O when bootstrap returns.
type DBDeps struct {
	// DB is bound lazily; the first query or health check dials.
	DB *sqlx.DB
	// Redis is the shared key-value client. The session store uses this
	// same instance.
	Redis *redis.Client
}
