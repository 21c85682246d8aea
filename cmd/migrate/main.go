// migrate aplica las migraciones SQL embebidas contra la base configurada.
//
// Uso: go run ./cmd/migrate [up|down|version]
// Sin argumento ejecuta "up". Lee DATABASE_URL o DB_* igual que la API.
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/pharmaops-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pharmaops-api/pkg/config"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("migrate")

	mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir migraciones")
	}
	defer func() {
		if err := mg.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()

	switch cmd {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = mg.Version()
		if err == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("versión actual")
		}
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q (up|down|version)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		os.Exit(1)
	}
}
