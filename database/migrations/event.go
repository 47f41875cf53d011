package migrations

import (
	"sofra.link/configs/configslog"
	"sofra.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateEventsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating events, event_details & course_timing_overrides tables...")
	err := db.AutoMigrate(&models.Event{}, &models.EventDetail{}, &models.CourseTimingOverride{})
	if err != nil {
		configslog.Log.Error("Failed to migrate events tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Events tables migrated successfully")
	return nil
}
