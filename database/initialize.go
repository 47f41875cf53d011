package database

import (
	"sofra.link/configs/configslog"
	"sofra.link/database/migrations"
	"sofra.link/database/seeders"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Initialize(db *gorm.DB, migrate bool, seed bool) {
	if !migrate && !seed {
		configslog.SLog.Info("Migrate veya seed bayrağı belirtilmedi, işlem yapılmayacak.")
		return
	}

	tx := db.Begin()
	if tx.Error != nil {
		configslog.Log.Fatal("Veritabanı transaction başlatılamadı", zap.Error(tx.Error))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			configslog.Log.Fatal("Veritabanı başlatma işlemi başarısız oldu (panic)", zap.Any("panic_info", r))
		} else if err := tx.Error; err != nil && err != gorm.ErrInvalidTransaction {
			configslog.SLog.Warn("Başlatma sırasında hata oluştuğu için işlem geri alınıyor.", zap.Error(err))
			rbErr := tx.Rollback().Error
			if rbErr != nil && rbErr != gorm.ErrInvalidTransaction {
				configslog.Log.Error("Rollback sırasında ek hata oluştu", zap.Error(rbErr))
			}
		}
	}()

	configslog.SLog.Info("Veritabanı başlatma işlemi başlıyor...")

	if migrate {
		configslog.SLog.Info("Migrasyonlar çalıştırılıyor...")
		if err := RunMigrationsInOrder(tx); err != nil {
			configslog.Log.Error("Migrasyon başarısız oldu", zap.Error(err))
			return
		}
		configslog.SLog.Info("Migrasyonlar tamamlandı.")
	} else {
		configslog.SLog.Info("Migrate bayrağı belirtilmedi, migrasyon adımı atlanıyor.")
	}

	if seed {
		configslog.SLog.Info("Seeder'lar çalıştırılıyor...")
		if err := CheckAndRunSeeders(tx); err != nil {
			configslog.Log.Error("Seeding başarısız oldu", zap.Error(err))
			return
		}
		configslog.SLog.Info("Seeder'lar tamamlandı.")
	} else {
		configslog.SLog.Info("Seed bayrağı belirtilmedi, seeder adımı atlanıyor.")
	}

	configslog.SLog.Info("İşlem commit ediliyor...")
	if err := tx.Commit().Error; err != nil {
		tx.Error = err
		configslog.Log.Error("Commit başarısız oldu", zap.Error(err))
		return
	}

	configslog.SLog.Info("Veritabanı başlatma işlemi başarıyla tamamlandı")
}

func RunMigrationsInOrder(db *gorm.DB) error {
	configslog.SLog.Info("Migrasyonlar sırayla çalıştırılıyor...")

	configslog.SLog.Info(" -> Event migrasyonları çalıştırılıyor...")
	if err := migrations.MigrateEventsTables(db); err != nil {
		configslog.Log.Error("Events tabloları migrasyonu başarısız oldu", zap.Error(err))
		return err
	}
	configslog.SLog.Info(" -> Event migrasyonları tamamlandı.")

	configslog.SLog.Info(" -> Party migrasyonları çalıştırılıyor...")
	if err := migrations.MigratePartiesTables(db); err != nil {
		configslog.Log.Error("Parties tabloları migrasyonu başarısız oldu", zap.Error(err))
		return err
	}
	configslog.SLog.Info(" -> Party migrasyonları tamamlandı.")

	configslog.SLog.Info(" -> Plan migrasyonları çalıştırılıyor...")
	if err := migrations.MigratePlansTables(db); err != nil {
		configslog.Log.Error("Match plan tabloları migrasyonu başarısız oldu", zap.Error(err))
		return err
	}
	configslog.SLog.Info(" -> Plan migrasyonları tamamlandı.")

	configslog.SLog.Info(" -> Envelope migrasyonları çalıştırılıyor...")
	if err := migrations.MigrateEnvelopesTable(db); err != nil {
		configslog.Log.Error("Envelopes tablosu migrasyonu başarısız oldu", zap.Error(err))
		return err
	}
	configslog.SLog.Info(" -> Envelope migrasyonları tamamlandı.")

	configslog.SLog.Info("Tüm migrasyonlar başarıyla çalıştırıldı.")
	return nil
}

func CheckAndRunSeeders(db *gorm.DB) error {
	configslog.SLog.Info(" -> Demo etkinlik seeder çalıştırılıyor...")
	if err := seeders.SeedDemoEvent(db); err != nil {
		configslog.Log.Error("Demo etkinlik seed edilemedi", zap.Error(err))
		return err
	}
	configslog.SLog.Info(" -> Demo etkinlik seeder tamamlandı.")

	configslog.SLog.Info("Tüm seeder'lar başarıyla kontrol edildi/çalıştırıldı.")
	return nil
}
