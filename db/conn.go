// Package db opens the document store. Documents are kept in a relational
// database through gorm: sqlite for single node setups, postgres otherwise.
package db

import (
	"fmt"

	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/pkg/util"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the database for driver and migrates every model. TranslateError
// is enabled so unique index violations surface as gorm.ErrDuplicatedKey on
// both drivers.
func New(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		// If running in a docker container the sqlite file should be mounted
		// by the host instead of living inside the container
		if util.IsRunningInDocker() && !util.FileExists(dsn) {
			return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to %s", dsn)
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database, %w", driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&model.User{}, &model.OneTimeCode{}, &model.Listing{})
	if err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return nil
}
