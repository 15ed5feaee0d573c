package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/craftwood/storefront/internal/catalog"
	"github.com/craftwood/storefront/internal/config"
	"github.com/craftwood/storefront/internal/media"
	"github.com/craftwood/storefront/internal/order"
	"github.com/craftwood/storefront/internal/storage"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  "storefront-service",
		Usage: "product catalog and order backend",
		Commands: []*cli.Command{
			{Name: "serve", Usage: "apply migrations and run the HTTP server", Action: serve},
			{Name: "migrate", Usage: "apply schema migrations and exit", Action: runMigrations},
		},
		DefaultCommand: "serve",
	}
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("storefront-service failed")
	}
}

func runMigrations(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := storage.Migrate(cfg.DBDriver, cfg.DBDSN); err != nil {
		return err
	}
	log.WithField("driver", cfg.DBDriver).Info("migrations applied")
	return nil
}

func serve(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := storage.Migrate(cfg.DBDriver, cfg.DBDSN); err != nil {
		return err
	}

	var (
		products   catalog.Repository
		orderStore order.Store
	)
	switch cfg.DBDriver {
	case storage.DriverPostgres:
		pool, err := storage.OpenPostgres(context.Background(), cfg.DBDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		products = catalog.NewPGRepo(pool)
		orderStore = order.NewPGStore(pool)
	case storage.DriverSQLite:
		db, err := storage.OpenSQLite(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		products = catalog.NewSQLiteRepo(db)
		orderStore = order.NewSQLiteStore(db)
	default:
		return errors.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	images, err := media.NewDiskStore(cfg.UploadsDir)
	if err != nil {
		return err
	}

	r := newRouter(products, images, order.NewService(orderStore), images.Dir())
	log.WithField("addr", cfg.Addr).Info("storefront-service listening")
	return r.Run(cfg.Addr)
}
