package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/orderflow/internal/repository"
	"gorm.io/gorm"
)

func createSendAttemptsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_send_attempts",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.SendAttemptModel{}); err != nil {
				return err
			}
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_send_attempts_record ON send_attempts (run_id, record_key, attempt_number)`,
			)
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.SendAttemptModel{})
		},
	}
}
