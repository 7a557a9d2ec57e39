package db

import (
	"github.com/pkg/errors"

	"github.com/mvpforge/mvpforge/internal/profile"
	"github.com/mvpforge/mvpforge/store"
	"github.com/mvpforge/mvpforge/store/db/memory"
	"github.com/mvpforge/mvpforge/store/db/postgres"
	"github.com/mvpforge/mvpforge/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile. Sessions, feedback and
// customer rows live in whichever backend is configured; with no DSN the
// in-memory driver keeps everything in process (nothing survives a restart).
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	case "memory":
		driver = memory.NewDB()
	default:
		return nil, errors.Errorf("unknown db driver: %s", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
