// Package api exposes the thin HTTP adapter over the scheduling and
// adherence core: account endpoints, the medication day view, mark
// taken, and adherence statistics.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/adherence"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/config"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/reminder"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type Server struct {
	app        *fiber.App
	config     *config.Config
	store      *store.Store
	calc       *adherence.Calculator
	dispatcher *reminder.Dispatcher
	logger     *zap.Logger
}

func New(cfg *config.Config, st *store.Store, calc *adherence.Calculator, dispatcher *reminder.Dispatcher, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:           time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.Server.WriteTimeout) * time.Second,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:        app,
		config:     cfg,
		store:      st,
		calc:       calc,
		dispatcher: dispatcher,
		logger:     logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	s.app.Get("/health", s.handleHealth)
	s.app.Get("/api/metrics", s.handleMetrics)

	api := s.app.Group("/api")

	api.Post("/auth/register", s.handleRegister)
	api.Post("/auth/login", s.handleLogin)

	protected := api.Use(s.authMiddleware())

	protected.Get("/medications", s.handleListMedications)
	protected.Post("/medications", s.handleCreateMedication)
	protected.Get("/medications/day", s.handleDayView)
	protected.Delete("/medications/:id", s.handleDeleteMedication)
	protected.Post("/medications/:id/doses/:ordinal/taken", s.handleMarkTaken)

	protected.Get("/adherence", s.handleAdherence)
}

// Start blocks serving HTTP until Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	s.logger.Info("API server listening", zap.String("addr", addr))
	if err := s.app.Listen(addr); err != nil && !strings.Contains(err.Error(), "server closed") {
		return err
	}
	return nil
}

// Shutdown drains connections and stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
