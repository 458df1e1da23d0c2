package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Inventario-portal/internal/devbackend"
	"github.com/jhoicas/Inventario-portal/pkg/config"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

// Backend de desarrollo en memoria: implementa el contrato REST que el portal
// consume, con datos sembrados. Arranca en el puerto 5000 salvo DEV_BACKEND_PORT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Options{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: "inventario-devbackend",
	})

	srv, err := devbackend.New(devbackend.Config{
		JWTSecret:  cfg.JWT.Secret,
		JWTIssuer:  cfg.JWT.Issuer,
		ExpMinutes: cfg.JWT.Expiration,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar backend de desarrollo")
	}

	app := fiber.New(fiber.Config{
		AppName:     "inventario-devbackend",
		ReadTimeout: time.Second * 10,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "inventario-devbackend"})
	})

	srv.Register(app)

	addr := ":5000"
	if p := os.Getenv("DEV_BACKEND_PORT"); p != "" {
		addr = ":" + p
	}
	log.Info().Str("addr", addr).Msg("backend de desarrollo escuchando")

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("backend de desarrollo detenido")
}
