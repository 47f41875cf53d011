package migrations

import (
	"sofra.link/configs/configslog"
	"sofra.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigratePlansTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating match_plans, assignments & pairings tables...")
	err := db.AutoMigrate(&models.MatchPlan{}, &models.Assignment{}, &models.Pairing{})
	if err != nil {
		configslog.Log.Error("Failed to migrate match plan tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Match plan tables migrated successfully")
	return nil
}
