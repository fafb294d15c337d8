package container

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"socialgap/adapters/coercer"
	"socialgap/adapters/excel"
	"socialgap/adapters/mcp"
	"socialgap/adapters/postgres"
	"socialgap/app"
	"socialgap/domain/population"
	"socialgap/internal/api"
	"socialgap/internal/config"
	"socialgap/internal/testkit"
	"socialgap/ports"
	"socialgap/ui"
)

// Name and Version identify the server to MCP clients
const (
	Name    = "socialgap"
	Version = "0.3.0"
)

// Container holds the application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB     *sqlx.DB
	Source ports.TableSource

	Service *app.Service
}

// New creates a container; Init loads the table
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Container{Config: cfg, Logger: logger}, nil
}

// Init opens the configured data source, loads the person table and builds
// the analysis service
func (c *Container) Init(ctx context.Context) error {
	source, err := c.openSource(ctx)
	if err != nil {
		return err
	}
	c.Source = source

	table, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", source.Describe(), err)
	}
	c.Logger.Info("population loaded",
		zap.String("source", source.Describe()),
		zap.Int("rows", table.Len()),
		zap.Strings("programs", table.Programs()))

	c.InitWithTable(table)
	return nil
}

// InitWithTable builds the service over an already loaded table
func (c *Container) InitWithTable(table *population.Table) {
	c.Service = app.NewService(table, nil, app.Options{
		Workers:     c.Config.Analysis.MultiProgramWorkers,
		RankingTTL:  c.Config.Analysis.RankingCacheTTL,
		DefaultTopN: c.Config.Analysis.DefaultTopN,
	}, c.Logger)
}

func (c *Container) openSource(ctx context.Context) (ports.TableSource, error) {
	switch c.Config.Data.Source {
	case config.SourcePostgres:
		db, err := postgres.Connect(ctx, c.Config.Database.URL)
		if err != nil {
			return nil, err
		}
		c.DB = db
		return postgres.NewTableRepository(db, c.Config.Database.Table, coercer.DefaultCoercionConfig(), c.Logger)
	case config.SourceDemo:
		return demoSource{}, nil
	default:
		excelConfig := excel.DefaultExcelConfig()
		excelConfig.FilePath = c.Config.Data.File
		if c.Config.Data.Sheet != "" {
			excelConfig.Sheet = c.Config.Data.Sheet
		}
		return excel.NewDataReader(excelConfig, c.Logger), nil
	}
}

// HTTPHandler assembles the report viewer and the JSON API under one CORS
// aware handler. The API lives under /api.
func (c *Container) HTTPHandler() (http.Handler, error) {
	if c.Service == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	if c.Config.Server.GinMode != "" {
		gin.SetMode(c.Config.Server.GinMode)
	}

	viewer, err := ui.NewApp(c.Service, c.Logger)
	if err != nil {
		return nil, err
	}
	router := viewer.Router()
	router.Mount("/api", api.NewRouter(c.Service, c.Logger))

	handler := cors.New(cors.Options{
		AllowedOrigins: c.Config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", api.CallIDHeader},
		ExposedHeaders: []string{api.CallIDHeader},
	}).Handler(router)
	return middleware.RequestID(handler), nil
}

// MCPServer exposes the catalog as MCP tools
func (c *Container) MCPServer() (*mcp.Server, error) {
	if c.Service == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	return mcp.NewServer(Name, Version, c.Service, c.Logger), nil
}

// Shutdown releases the database connection, if any
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// demoSource serves a generated population
type demoSource struct{}

func (demoSource) Describe() string { return "demo:generated" }

func (demoSource) Load(ctx context.Context) (*population.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return testkit.NewPopulationGenerator(testkit.DefaultPopulationConfig()).Generate(), nil
}

// Addr turns a configured port into a listen address
func Addr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
