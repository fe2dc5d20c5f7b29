package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	contactapp "github.com/ramindav/outreach-crm/internal/application/contacts"
	importapp "github.com/ramindav/outreach-crm/internal/application/imports"
	"github.com/ramindav/outreach-crm/internal/config"
	contactdomain "github.com/ramindav/outreach-crm/internal/domain/contact"
	"github.com/ramindav/outreach-crm/internal/infrastructure/file"
	"github.com/ramindav/outreach-crm/internal/infrastructure/repository"
	"github.com/ramindav/outreach-crm/internal/infrastructure/spreadsheet"
	httpecho "github.com/ramindav/outreach-crm/internal/interfaces/http/echo"
)

func NewHTTPServer(db *gorm.DB, pool *pgxpool.Pool, spool *file.Spool, phones contactdomain.PhonePolicy, cfg config.Config) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit(cfg.RequestBodyLimit))

	contactRepo := repository.NewContactRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	matchRepo := repository.NewContactMatchRepository(pool)
	jobRepo := repository.NewImportJobRepository(db)

	resolver := contactapp.NewCompanyResolver(companyRepo)
	engine := contactapp.NewUpsertEngine(contactRepo, resolver)
	matcher := contactapp.NewMatcher(matchRepo)

	submit := importapp.NewSubmitImport(jobRepo, spool, engine, matcher, importapp.AdmissionPolicy{
		SyncRowLimit:  cfg.SyncRowLimit,
		SyncByteLimit: cfg.SyncByteLimit,
	}, phones)
	jobService := importapp.NewJobService(jobRepo)
	contactService := contactapp.NewService(contactRepo, companyRepo, resolver, phones)

	importHandler := httpecho.NewImportHandler(submit, jobService, spreadsheet.Rows)
	contactHandler := httpecho.NewContactHandler(contactService)

	httpecho.RegisterRoutes(server, importHandler, contactHandler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	return server
}
