package cmd

import (
	"context"
	"time"

	"go.uber.org/fx"

	"refseeder/internal/bootstrap"
	"refseeder/internal/errs"
	uselibrary "refseeder/internal/usecase/library"
)

const appStartTimeout = 10 * time.Second

// withApp builds the fx application, starts it, hands the populated
// dependencies to fn, and stops the application afterwards. Every
// subcommand routes through here so wiring stays in one place.
func withApp(ctx context.Context, fn func(ctx context.Context, app *bootstrap.App, svc *uselibrary.Service) error) error {
	var (
		app *bootstrap.App
		svc *uselibrary.Service
	)

	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(
			func() context.Context { return ctx },
			fx.Annotate(
				func() string { return cfgFile },
				fx.ResultTags(`name:"configFile"`),
			),
		),
		bootstrap.Module,
		fx.Populate(&app, &svc),
	)

	startCtx, cancel := context.WithTimeout(ctx, appStartTimeout)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return errs.Wrap(err, "start application")
	}

	runErr := fn(ctx, app, svc)

	stopCtx, cancel := context.WithTimeout(context.Background(), appStartTimeout)
	defer cancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		if runErr == nil {
			return errs.Wrap(err, "stop application")
		}
	}

	return runErr
}
