// Package app arma el Provider del proceso: elige storage según config y
// comparte un único handle.
package app

import (
	"io"

	mem "pets-provider/internal/adapters/storage/memory"
	pg "pets-provider/internal/adapters/storage/postgres"
	"pets-provider/internal/config"
	"pets-provider/internal/domain/pets"
	"pets-provider/internal/platform/logger"
)

type App struct {
	Config   config.Config
	Log      logger.Logger
	Provider *pets.Provider

	store pets.Store
}

type Options struct {
	Config config.Config

	// Opcional: si viene, se usa tal cual (tests). Si no, Postgres cuando hay
	// DSN, y si no in-memory.
	Store pets.Store
	Log   logger.Logger
}

func New(opts Options) *App {
	log := opts.Log
	if log == nil {
		log = logger.New(logger.Options{
			Level:  logger.ParseLevel(opts.Config.Log.Level),
			Format: logger.ParseFormat(opts.Config.Log.Format),
			App:    "pets-provider",
		})
	}

	store := opts.Store
	if store == nil {
		if opts.Config.UsesPostgres() {
			pgOpts := pg.Options{
				DSN:          opts.Config.Database.DSN,
				MaxOpenConns: opts.Config.Database.MaxOpenConns,
				MaxIdleConns: opts.Config.Database.MaxIdleConns,
			}
			if opts.Config.Database.Trace {
				pgOpts.Tracer = logger.PgxTracer(log)
			}
			// La conexión se abre en la primera operación, no acá.
			store = pg.NewPetsStore(pgOpts)
			log.Debug("using postgres storage", nil)
		} else {
			store = mem.NewPetStore()
			log.Debug("using in-memory storage", nil)
		}
	}

	return &App{
		Config:   opts.Config,
		Log:      log,
		Provider: pets.NewProvider(store, log),
		store:    store,
	}
}

// Close libera el storage si tiene algo que liberar.
func (a *App) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
