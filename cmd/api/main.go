package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	_ "github.com/jhoicas/emed-onboarding/docs"
	"github.com/jhoicas/emed-onboarding/internal/application/auth"
	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/application/employees"
	"github.com/jhoicas/emed-onboarding/internal/application/enrollment"
	"github.com/jhoicas/emed-onboarding/internal/application/provisioning"
	"github.com/jhoicas/emed-onboarding/internal/application/seed"
	"github.com/jhoicas/emed-onboarding/internal/application/webhooks"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/emed-onboarding/internal/infrastructure/pdf"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/security"
	httpRouter "github.com/jhoicas/emed-onboarding/internal/interfaces/http"
	"github.com/jhoicas/emed-onboarding/pkg/config"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
	"github.com/jhoicas/emed-onboarding/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer st.close()

	if st.seedProgram {
		if _, err := seed.NewSeeder(cfg.Onboarding.ProgramCode, st.programs, nil, nil).Run(ctx, false); err != nil {
			log.Fatal().Err(err).Msg("sembrar programa")
		}
	}

	prom := metrics.NewPrometheus()
	ids := identifier.NewGenerator()
	hasher := security.NewBcryptHasher(cfg.Onboarding.BcryptCost)

	provisionUC := provisioning.NewProvisionUseCase(st.provisioningTx, st.programs, hasher, ids, prom, provisioning.Config{
		ProgramCode:    cfg.Onboarding.ProgramCode,
		PortalBaseURL:  cfg.Onboarding.PortalBaseURL,
		DuplicateEmail: cfg.Onboarding.DuplicateEmail,
	})
	authUC := auth.NewAuthUseCase(st.admins, st.companies, hasher, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	codeUC := codes.NewCodeUseCase(st.codesTx, st.companies, st.programs, st.batches, st.codes,
		infrapdf.NewMarotoPDFGenerator(), ids, prom, codes.Config{
			ProgramCode:      cfg.Onboarding.ProgramCode,
			MaxBatchQuantity: cfg.Onboarding.MaxBatchQuantity,
			EnrollmentURL:    cfg.Onboarding.EnrollmentURL,
		})
	enrollmentUC := enrollment.NewEnrollmentUseCase(st.enrollmentTx, st.codes, st.companies, st.programs, ids, prom)
	webhookUC := webhooks.NewWebhookUseCase(st.webhooksTx, ids, prom)
	employeeUC := employees.NewEmployeeUseCase(st.companies, st.users, st.metrics, st.care)

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:           cfg.App.Name,
		Logger:         log.Zerolog(),
		RequestTimeout: cfg.HTTP.RequestTimeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "eMed Onboarding API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProvisionUC:    provisionUC,
		AuthUC:         authUC,
		CodeUC:         codeUC,
		EnrollmentUC:   enrollmentUC,
		WebhookUC:      webhookUC,
		EmployeeUC:     employeeUC,
		JWTSecret:      cfg.JWT.Secret,
		WebhookSecret:  cfg.Webhooks.Secret,
		PublicRateMax:  cfg.HTTP.PublicRateLimit,
		MetricsHandler: prom.Handler(),
		ServiceName:    cfg.App.Name,
	})

	if cfg.Webhooks.Secret == "" {
		log.Warn().Msg("WEBHOOK_SECRET vacío: los webhooks no verifican firma")
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
