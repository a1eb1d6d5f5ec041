// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/information/internal/app/store/kvstore"
	"github.com/dalemusser/information/internal/app/store/sqldb"
	"go.uber.org/zap"
)

// bindDatabase associates the relational handle with the settings. It does
// not dial; an unreachable server shows up on first use, not here. Only an
// unusable URI fails the step.
func bindDatabase(ctx context.Context, a *App) error {
	db, err := sqldb.Open(a.Settings.DatabaseURI)
	if err != nil {
		return err
	}
	a.DB = db
	a.Logger.Info("database bound (lazy)",
		zap.String("driver", db.DriverName()),
		zap.String("uri", a.Settings.RedactedDatabaseURI()))
	return nil
}

// connectKeyValue creates the pooled key-value client. Connections are
// opened on the first command.
func connectKeyValue(ctx context.Context, a *App) error {
	a.Redis = kvstore.New(kvstore.OptionsFromSettings(a.Settings))
	a.Logger.Info("key-value client created",
		zap.String("addr", a.Settings.RedisAddr()),
		zap.Bool("auth", a.Settings.RedisPassword != ""))
	return nil
}
