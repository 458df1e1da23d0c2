package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Inventario-portal/internal/application/entry"
	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/application/tenant"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/backend"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/branding"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/localstore"
	httpRouter "github.com/jhoicas/Inventario-portal/internal/interfaces/http"
	"github.com/jhoicas/Inventario-portal/pkg/config"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Options{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("backend", cfg.Backend.URL).
		Msg("iniciando portal")

	// Slots durables: token, originalToken, currentTenant. Sin directorio
	// configurado se queda en memoria (la sesión no sobrevive al proceso).
	var slots interface {
		tenant.Cache
		session.TokenVault
	}
	if cfg.State.Dir != "" {
		fileStore, err := localstore.NewFileStore(cfg.State.Dir)
		if err != nil {
			log.Fatal().Err(err).Msg("almacenamiento local")
		}
		slots = fileStore
	} else {
		slots = localstore.NewMemStore()
	}

	api := backend.New(cfg.Backend.URL, cfg.Backend.Timeout, log)
	brand := branding.New()

	resolver := &tenant.Resolver{
		BaseDomain: cfg.Tenant.BaseDomain,
		DevHosts:   cfg.Tenant.DevHosts,
		DevDefault: cfg.Tenant.DevDefault,
	}
	tenants := tenant.NewStore(api, slots, brand, log)
	sessions := session.NewStore(api, slots, tenants, log)
	decider := entry.NewDecider(tenants, sessions, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Invorya Portal",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Resolver: resolver,
		Tenants:  tenants,
		Sessions: sessions,
		Decider:  decider,
		Backend:  api,
		Branding: brand,
		Log:      log,
	})

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

	log.Info().Msg("portal detenido")
}
