package devserver

import (
	"context"

	"postline/internal/config"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds the dev-server dependencies and its route handlers.
type Server struct {
	cfg *config.Config
	db  *gorm.DB
	app *fiber.App
}

// New builds the fiber app with middleware and routes wired.
func New(cfg *config.Config, db *gorm.DB) *Server {
	app := fiber.New(fiber.Config{
		AppName: "postline dev server",
	})

	s := &Server{cfg: cfg, db: db, app: app}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())

	prom := fiberprometheus.New("postline-devserver")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	s.setupRoutes(app)
	return s
}

func (s *Server) setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/auth/login", s.Login)

	api.Get("/posts", s.ListPosts)
	api.Get("/posts/trending", s.TrendingPosts)
	api.Post("/posts", s.AuthRequired, s.CreatePost)
	api.Put("/posts", s.AuthRequired, s.UpdatePost)
	api.Delete("/posts/:id", s.AuthRequired, s.DeletePost)

	api.Post("/comments", s.AuthRequired, s.CreateComment)
	api.Post("/votes", s.AuthRequired, s.CreateVote)

	api.Get("/users", s.AuthRequired, s.ListUsers)
	api.Get("/dashboard", s.AuthRequired, s.GetDashboard)
}

// App exposes the fiber app for tests (app.Test) and the entry point.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the given address until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
