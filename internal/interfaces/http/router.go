package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/emed-onboarding/internal/application/auth"
	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/application/dto"
	"github.com/jhoicas/emed-onboarding/internal/application/employees"
	"github.com/jhoicas/emed-onboarding/internal/application/enrollment"
	"github.com/jhoicas/emed-onboarding/internal/application/provisioning"
	"github.com/jhoicas/emed-onboarding/internal/application/webhooks"
)

// AppConfig opciones del servidor Fiber.
type AppConfig struct {
	Name           string
	Logger         zerolog.Logger
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// NewApp construye la aplicación Fiber con el middleware común (recover, request id, logging, CORS, timeout).
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ErrorHandler: ErrorHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(cfg.Logger))
	origins := "*"
	if len(cfg.AllowedOrigins) > 0 {
		origins = strings.Join(cfg.AllowedOrigins, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + HeaderWebhookSignature,
	}))
	app.Use(RequestTimeout(cfg.RequestTimeout))
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProvisionUC    *provisioning.ProvisionUseCase
	AuthUC         *auth.AuthUseCase
	CodeUC         *codes.CodeUseCase
	EnrollmentUC   *enrollment.EnrollmentUseCase
	WebhookUC      *webhooks.WebhookUseCase
	EmployeeUC     *employees.EmployeeUseCase
	JWTSecret      string
	WebhookSecret  string
	PublicRateMax  int          // peticiones por minuto y por IP en validate/enroll; 0 desactiva
	MetricsHandler http.Handler // GET /metrics; nil no registra la ruta
	ServiceName    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Aprovisionamiento y login (público)
	api.Post("/companies/provision", NewCompanyHandler(deps.ProvisionUC).Provision)
	api.Post("/auth/login", NewAuthHandler(deps.AuthUC).Login)

	// Empleados (público, con límite por IP)
	enrollHandler := NewEnrollmentHandler(deps.EnrollmentUC)
	publicLimit := publicRateLimit(deps.PublicRateMax)
	api.Post("/codes/validate", publicLimit, enrollHandler.Validate)
	api.Post("/enroll", publicLimit, enrollHandler.Enroll)

	// Socios (firma HMAC)
	hooks := api.Group("/webhooks", WebhookSignature(deps.WebhookSecret))
	webhookHandler := NewWebhookHandler(deps.WebhookUC)
	hooks.Post("/lab-results", webhookHandler.LabResults)
	hooks.Post("/lab-kits", webhookHandler.LabKits)
	hooks.Post("/telehealth", webhookHandler.Telehealth)
	hooks.Post("/pharmacy", webhookHandler.Pharmacy)

	// Portal (JWT + admin activo), por ruta para no capturar el resto de /api
	admin := adminRoutes{
		router: api,
		guard:  []fiber.Handler{AuthMiddleware(deps.JWTSecret), RequireActiveAdmin(deps.AuthUC)},
	}

	codeHandler := NewCodeHandler(deps.CodeUC)
	admin.post("/codes/generate", codeHandler.Generate)
	admin.get("/codes", codeHandler.List)
	admin.get("/code-batches", codeHandler.ListBatches)
	admin.get("/code-batches/:id/codes.csv", codeHandler.ExportCSV)
	admin.get("/code-batches/:id/codes.pdf", codeHandler.ExportPDF)

	employeeHandler := NewEmployeeHandler(deps.EmployeeUC)
	admin.get("/employees", employeeHandler.List)
	admin.get("/employees/:userId", employeeHandler.Detail)
	admin.put("/employees/:userId/deactivate", employeeHandler.Deactivate)
	admin.get("/metrics", employeeHandler.Metrics)
}

// adminRoutes antepone la cadena de autenticación a cada handler.
type adminRoutes struct {
	router fiber.Router
	guard  []fiber.Handler
}

func (a adminRoutes) chain(h fiber.Handler) []fiber.Handler {
	return append(append([]fiber.Handler{}, a.guard...), h)
}

func (a adminRoutes) get(path string, h fiber.Handler)  { a.router.Get(path, a.chain(h)...) }
func (a adminRoutes) post(path string, h fiber.Handler) { a.router.Post(path, a.chain(h)...) }
func (a adminRoutes) put(path string, h fiber.Handler)  { a.router.Put(path, a.chain(h)...) }

func publicRateLimit(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas peticiones, intente más tarde"})
		},
	})
}
