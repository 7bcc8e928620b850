package routes

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ticket-desk/internal/controllers"
	"ticket-desk/internal/repositories"
	"ticket-desk/internal/services"
	"ticket-desk/pkg/config"
	"ticket-desk/pkg/middleware"
	"ticket-desk/pkg/service"
	"ticket-desk/pkg/utils"
)

type Loggers struct {
	Main   *zap.Logger
	Auth   *zap.Logger
	Ticket *zap.Logger
	Admin  *zap.Logger
}

// NewLoggers derives one named logger per route group.
func NewLoggers(base *zap.Logger) *Loggers {
	return &Loggers{
		Main:   base.Named("router"),
		Auth:   base.Named("auth"),
		Ticket: base.Named("ticket"),
		Admin:  base.Named("admin"),
	}
}

type Repositories struct {
	Users   repositories.UserRepositoryInterface
	Tickets repositories.TicketRepositoryInterface
	Tx      repositories.TxManagerInterface
	Cache   repositories.CacheRepositoryInterface
}

func NewRepositories(dbConn *pgxpool.Pool, cache repositories.CacheRepositoryInterface, logger *zap.Logger) Repositories {
	return Repositories{
		Users:   repositories.NewUserRepository(dbConn, logger.Named("user-repository")),
		Tickets: repositories.NewTicketRepository(dbConn, logger.Named("ticket-repository")),
		Tx:      repositories.NewTxManager(dbConn),
		Cache:   cache,
	}
}

func InitRouter(
	e *echo.Echo,
	repos Repositories,
	clf services.Classifier,
	jwtSvc service.JWTService,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: registering routes")

	authMW := middleware.NewAuthMiddleware(jwtSvc, repos.Users, loggers.Auth)

	authService := services.NewAuthService(repos.Users, repos.Cache, jwtSvc, loggers.Auth, &cfg.Auth)
	ticketService := services.NewTicketService(repos.Tickets, repos.Tx, repos.Cache, loggers.Ticket)
	classificationService := services.NewClassificationService(clf, loggers.Ticket)
	dashboardService := services.NewDashboardService(repos.Tickets, repos.Users, repos.Cache, cfg.Redis.StatsTTL, loggers.Admin)
	reportService := services.NewReportService(repos.Tickets, loggers.Admin)

	classifyCtrl := controllers.NewClassifyController(classificationService, loggers.Ticket)
	e.GET("/", classifyCtrl.Root)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth is attached per route or per prefix group. A group with an empty
	// prefix would also guard echo's catch-all not-found route.
	runAuthRouter(e, controllers.NewAuthController(authService, loggers.Auth), authMW)
	runTicketRouter(e, controllers.NewTicketController(ticketService, loggers.Ticket), classifyCtrl, authMW)
	runAdminRouter(
		e,
		controllers.NewDashboardController(dashboardService, loggers.Admin),
		controllers.NewReportController(reportService, loggers.Admin),
		authMW,
	)

	loggers.Main.Info("InitRouter: routes registered", zap.Int("count", len(e.Routes())))
}

// ErrorHandler renders errors that reach echo (unknown routes, wrong
// methods, recovered panics) with the JSON error envelope.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if rerr := utils.ErrorResponse(c, err, logger); rerr != nil {
			logger.Error("could not write error response", zap.Error(rerr))
		}
	}
}
