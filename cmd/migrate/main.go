package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Rrens/pain-mapper/internal/config"
	"github.com/Rrens/pain-mapper/internal/repository/postgres"
	"github.com/Rrens/pain-mapper/internal/repository/sqlite"
	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var steps int

var rootCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Apply or roll back the embedded database schema",
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrate(func(m *migrate.Migrate) error {
			if steps > 0 {
				return m.Steps(steps)
			}
			return m.Up()
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (one step unless --steps is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := steps
		if n <= 0 {
			n = 1
		}
		return withMigrate(func(m *migrate.Migrate) error {
			return m.Steps(-n)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrate(func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("no migrations applied")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("version %d (dirty: %t)\n", version, dirty)
			return nil
		})
	},
}

func init() {
	upCmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to apply (0 = all)")
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

// withMigrate opens the configured database and runs fn against it
func withMigrate(fn func(m *migrate.Migrate) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var m *migrate.Migrate
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		fmt.Printf("Opening SQLite database at %s...\n", cfg.Database.SQLitePath)
		db, err := sqlite.Open(context.Background(), cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		m, err = sqlite.NewMigrate(db)
		if err != nil {
			db.Close()
			return err
		}
	default:
		fmt.Printf("Connecting to database at %s:%d...\n", cfg.Database.Host, cfg.Database.Port)
		m, err = postgres.NewMigrate(cfg.Database.DSN())
		if err != nil {
			return err
		}
	}
	defer m.Close()

	if err := fn(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No changes")
			return nil
		}
		return err
	}

	fmt.Println("Done")
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
