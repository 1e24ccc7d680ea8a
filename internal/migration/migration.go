package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	costcenterdomain "github.com/tabacha/librelandlord/internal/costcenter/domain"
	formuladomain "github.com/tabacha/librelandlord/internal/formula/domain"
	meterdomain "github.com/tabacha/librelandlord/internal/meter/domain"
	settlementdomain "github.com/tabacha/librelandlord/internal/settlement/domain"
	tenancydomain "github.com/tabacha/librelandlord/internal/tenancy/domain"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// RunMigrations brings the schema up to date. Postgres uses the embedded
// versioned SQL under an advisory lock; sqlite (local/dev) auto-migrates
// from the entity definitions.
func RunMigrations(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	if conn.Dialector.Name() != "postgres" {
		return autoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	unlock, err := acquireAdvisoryLock(ctx, sqlDB)
	if err != nil {
		return err
	}
	defer func() {
		_ = unlock(context.Background())
	}()

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func autoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&meterdomain.MeterPlace{},
		&meterdomain.Meter{},
		&meterdomain.Reading{},
		&tenancydomain.Apartment{},
		&tenancydomain.Renter{},
		&formuladomain.Definition{},
		&formuladomain.Argument{},
		&costcenterdomain.CostCenter{},
		&costcenterdomain.Contribution{},
		&settlementdomain.AccountPeriod{},
		&settlementdomain.Bill{},
	)
}
