package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"demandhub/internal/catalog"
	"demandhub/internal/config"
	"demandhub/internal/handlers"
	"demandhub/internal/middleware"
	"demandhub/internal/models"
	"demandhub/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the demandhub application",
	Long:  `Run the demandhub application`,
	Run:   runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runServer sobe a API com a configuração do arquivo, sem flags de linha de
// comando. Para controle fino de DSN e tracing, use cmd/server.
func runServer(cmd *cobra.Command, args []string) {
	cfg := config.Load()

	if err := config.InitLogger(cfg); err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logrus.StandardLogger()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			cfg.Database.Host, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.Port)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Usuario{}, &models.Produto{}, &models.Demanda{}, &models.AnexoDemanda{},
		&models.Triagem{}, &models.HistoricoStatusTriagem{}, &models.DuplicidadeTriagem{},
		&models.ItemCatalogo{}, &models.RegraAutomacao{}, &models.EventoDominio{},
	); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	catalogService := catalog.NewService(db)
	eventos := services.NovoPublicadorEventos(db, appLogger)
	regraService := services.NewRegraService(db, appLogger)
	demandaService := services.NewDemandaService(db, appLogger)
	triagemService := services.NewTriagemService(db, appLogger, catalogService, regraService, demandaService, eventos)

	if cfg.Server.Host != "localhost" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RateLimitMiddleware(cfg))

	healthHandler := handlers.NewHealthHandler(db, Version)
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	handlers.RegisterDemandaRoutes(api, handlers.NewDemandaHandler(demandaService, appLogger))
	handlers.RegisterTriagemRoutes(api, handlers.NewTriagemHandler(triagemService, appLogger))
	handlers.RegisterRegraRoutes(api, handlers.NewRegraHandler(regraService))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logrus.Infof("Starting server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}
	logrus.Info("Server exited")
}
