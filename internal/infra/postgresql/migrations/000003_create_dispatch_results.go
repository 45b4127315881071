package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/orderflow/internal/repository"
	"gorm.io/gorm"
)

func createDispatchResultsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_dispatch_results",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.DispatchResultModel{}); err != nil {
				return err
			}
			return execAll(tx,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_dispatch_results_run_key ON dispatch_results (run_id, record_key)`,
				`CREATE INDEX IF NOT EXISTS idx_dispatch_results_failed ON dispatch_results (run_id) WHERE state = 'FAILED'`,
			)
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.DispatchResultModel{})
		},
	}
}
