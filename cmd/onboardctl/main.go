// onboardctl tareas operativas: migraciones y datos de referencia.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/application/ports"
	"github.com/jhoicas/emed-onboarding/internal/application/provisioning"
	"github.com/jhoicas/emed-onboarding/internal/application/seed"
	infrapdf "github.com/jhoicas/emed-onboarding/internal/infrastructure/pdf"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/postgres"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/security"
	"github.com/jhoicas/emed-onboarding/pkg/config"
	"github.com/jhoicas/emed-onboarding/pkg/identifier"
	"github.com/jhoicas/emed-onboarding/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "onboardctl",
		Short:        "Herramientas operativas del onboarding B2B",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// setup carga configuración, logger y pool.
func setup(ctx context.Context) (*config.Config, *logger.Logger, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "onboardctl"})
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return cfg, log, pool, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, log, pool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				return err
			}
			log.Info().Int("applied", applied).Msg("migraciones aplicadas")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Inserta el programa GLP-1 y, con --demo, una empresa de demostración",
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, _ := cmd.Flags().GetBool("demo")
			ctx := cmd.Context()
			cfg, log, pool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			tx := postgres.NewTxRunner(pool)
			programRepo := postgres.NewProgramRepository(pool)
			ids := identifier.NewGenerator()
			provisionUC := provisioning.NewProvisionUseCase(tx, programRepo,
				security.NewBcryptHasher(cfg.Onboarding.BcryptCost), ids, ports.NopMetrics{},
				provisioning.Config{
					ProgramCode:    cfg.Onboarding.ProgramCode,
					PortalBaseURL:  cfg.Onboarding.PortalBaseURL,
					DuplicateEmail: cfg.Onboarding.DuplicateEmail,
				})
			codeUC := codes.NewCodeUseCase(tx,
				postgres.NewCompanyRepository(pool), programRepo,
				postgres.NewCodeBatchRepository(pool), postgres.NewEnrollmentCodeRepository(pool),
				infrapdf.NewMarotoPDFGenerator(), ids, ports.NopMetrics{},
				codes.Config{
					ProgramCode:      cfg.Onboarding.ProgramCode,
					MaxBatchQuantity: cfg.Onboarding.MaxBatchQuantity,
					EnrollmentURL:    cfg.Onboarding.EnrollmentURL,
				})

			res, err := seed.NewSeeder(cfg.Onboarding.ProgramCode, programRepo, provisionUC, codeUC).Run(ctx, demo)
			if err != nil {
				return err
			}
			log.Info().Str("program_id", res.Program.ID).Str("code", res.Program.Code).Msg("programa listo")
			switch {
			case res.DemoExists:
				log.Info().Msg("empresa demo ya existente, sin cambios")
			case res.Demo != nil:
				log.Info().
					Str("company_id", res.Demo.Company.ID).
					Str("email", res.Demo.Credentials.Email).
					Str("temp_password", res.Demo.Credentials.TempPassword).
					Str("portal_url", res.Demo.PortalURL).
					Msg("empresa demo creada")
				if res.Batch != nil {
					log.Info().Str("batch_id", res.Batch.BatchID).Strs("codes", res.Batch.Codes).Msg("lote demo emitido")
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("demo", false, "Crear empresa, admin y lote de códigos de demostración")
	return cmd
}
