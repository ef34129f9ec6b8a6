package main

import (
	"context"
	"log/slog"
	"os"

	"bazaar/config"
	"bazaar/internal/delivery"
	"bazaar/internal/delivery/api"
	apimiddleware "bazaar/internal/delivery/api/middleware"
	"bazaar/internal/delivery/api/router/handler"
	"bazaar/internal/domain/lifecycle"
	"bazaar/internal/infra/auth"
	logs "bazaar/internal/infra/log"
	"bazaar/internal/infra/persistence"
	"bazaar/internal/infra/pubsub"
	"bazaar/internal/infra/qrcode"
	"bazaar/internal/infra/ratelimit"
	"bazaar/internal/usecase"
	"bazaar/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

type bootstrapParams struct {
	fx.In

	Lc     fx.Lifecycle
	AuthUC usecase.AuthUsecase
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			bootstrapAdmin,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
		),
		persistence.Module,
		pubsub.Module,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewHasherFromConfig,
			auth.NewTokenServiceFromConfig,
			qrcode.NewQRCodeServiceFromConfig,
			ratelimit.New,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewProfileService,
			impl.NewVerificationService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			apimiddleware.NewAuthMiddleware,
			apimiddleware.NewRateLimitMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewProfileHandler,
			handler.NewVerificationHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// bootstrapAdmin runs after the storage hooks so migrations are applied first.
func bootstrapAdmin(params bootstrapParams) {
	params.Lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			return params.AuthUC.EnsureBootstrapAdmin(ctx)
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
