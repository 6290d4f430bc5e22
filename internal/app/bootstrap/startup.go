// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/takeandeat/internal/app/resources"
	"github.com/dalemusser/takeandeat/internal/app/system/directory"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// The country directory is parsed here so a broken table stops startup
// instead of surfacing on the first location request.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeoutsFrom(appCfg))

	if err := directory.Load(); err != nil {
		return fmt.Errorf("load country directory: %w", err)
	}
	logger.Info("country directory loaded", zap.Int("countries", len(directory.Regions())))

	resources.LoadSharedTemplates()
	return nil
}

func timeoutsFrom(appCfg AppConfig) timeouts.Config {
	return timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Mail:   appCfg.TimeoutMail,
	}
}
