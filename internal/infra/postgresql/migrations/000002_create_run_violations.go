package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/orderflow/internal/repository"
	"gorm.io/gorm"
)

func createRunViolationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_run_violations",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.RunViolationModel{}); err != nil {
				return err
			}
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_run_violations_run_id ON run_violations (run_id)`,
				`CREATE INDEX IF NOT EXISTS idx_run_violations_category ON run_violations (run_id, category)`,
			)
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.RunViolationModel{})
		},
	}
}
