package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/rohits-web03/otadash/internal/config"
	"github.com/rohits-web03/otadash/internal/logs"
	"github.com/rohits-web03/otadash/internal/ota"
	"github.com/rohits-web03/otadash/internal/repositories"
)

func main() {
	var opts options
	pflag.IntVar(&opts.Devices, "devices", 6, "number of demo devices")
	pflag.IntVar(&opts.SessionsPerDevice, "sessions", 4, "sessions per device")
	pflag.IntVar(&opts.Products, "products", 12, "number of demo products")
	seed := pflag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logs.Logger.WithError(err).Fatal("config")
	}
	logs.Init(logs.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, File: cfg.Logging.File})
	log := logs.WithComponent("seed")

	db, err := repositories.ConnectDatabase(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	repos := repositories.NewRepos(db)

	ds := generate(rand.New(rand.NewPCG(*seed, *seed>>1)), time.Now(), opts)
	if err := validate(ds); err != nil {
		log.WithError(err).Fatal("generated data is inconsistent")
	}

	ctx := context.Background()
	for i := range ds.devices {
		if err := repos.Devices.Upsert(ctx, &ds.devices[i]); err != nil {
			log.WithError(err).Fatal("seeding devices")
		}
	}
	for i := range ds.sessions {
		ss := &ds.sessions[i]
		if err := repos.Sessions.Create(ctx, &ss.session, ss.history); err != nil {
			log.WithError(err).Fatal("seeding sessions")
		}
	}
	for i := range ds.products {
		if err := repos.Products.Create(ctx, &ds.products[i]); err != nil {
			log.WithError(err).Fatal("seeding products")
		}
	}

	log.WithFields(logrus.Fields{
		"devices":  len(ds.devices),
		"sessions": len(ds.sessions),
		"products": len(ds.products),
		"seed":     *seed,
	}).Info("demo data seeded")
}

// validate rejects any session that breaks a status or progress invariant.
func validate(ds dataset) error {
	var errs []error
	for _, ss := range ds.sessions {
		errs = append(errs, ota.CheckSession(ss.session)...)
		errs = append(errs, ota.CheckDownloads(ss.session.Events)...)
	}
	return errors.Join(errs...)
}
