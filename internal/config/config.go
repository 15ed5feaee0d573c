package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Addr       string `envconfig:"ADDR" default:":3000"`
	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN      string `envconfig:"DB_DSN" default:"storefront.db"`
	UploadsDir string `envconfig:"UPLOADS_DIR" default:"./public/uploads"`
}

func Load() (Config, error) {
	_ = godotenv.Load() // load .env if it exists

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	log.WithFields(log.Fields{
		"addr":        cfg.Addr,
		"db_driver":   cfg.DBDriver,
		"uploads_dir": cfg.UploadsDir,
	}).Info("config loaded")
	return cfg, nil
}
