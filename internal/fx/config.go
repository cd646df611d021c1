package fx

import (
	"log"

	"MyFinance/config"
	"MyFinance/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		loadConfig,
	),
	fx.Invoke(
		initLogger,
	),
)

// loadConfig reads .env files before viper so their values reach the environment.
func loadConfig() (*config.Config, error) {
	loadEnvFiles()
	return config.Load()
}

func loadEnvFiles() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: no .env in working directory: %v", err)
	}
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("warning: no ../../.env: %v", err)
	}
}

func initLogger(cfg *config.Config) {
	logger.Init(cfg)
}
