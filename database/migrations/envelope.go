package migrations

import (
	"sofra.link/configs/configslog"
	"sofra.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateEnvelopesTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating envelopes table...")
	err := db.AutoMigrate(&models.Envelope{})
	if err != nil {
		configslog.Log.Error("Failed to migrate envelopes table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Envelopes table migrated successfully")
	return nil
}
