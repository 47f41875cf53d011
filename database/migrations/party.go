package migrations

import (
	"sofra.link/configs/configslog"
	"sofra.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigratePartiesTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating parties & blocked_pairs tables...")
	err := db.AutoMigrate(&models.Party{}, &models.BlockedPair{})
	if err != nil {
		configslog.Log.Error("Failed to migrate parties & blocked_pairs tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Parties & blocked_pairs tables migrated successfully")
	return nil
}
