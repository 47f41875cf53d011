package main

import (
	"os"
	"os/signal"
	"syscall"

	"sofra.link/configs/configsdatabase"
	"sofra.link/configs/configslog"
	"sofra.link/routes"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	configslog.InitLogger()
	defer configslog.SyncLogger()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	app := fiber.New(fiber.Config{
		AppName: "sofra.link",
	})

	routes.SetupRoutes(app)

	// Graceful shutdown: SIGINT/SIGTERM alındığında açık istekler tamamlanır.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		configslog.SLog.Info("Kapatma sinyali alındı, sunucu durduruluyor...")
		if err := app.Shutdown(); err != nil {
			configslog.Log.Error("Sunucu kapatılırken hata oluştu", zap.Error(err))
		}
	}()

	addr := ":" + getEnv("APP_PORT", "3000")
	configslog.SLog.Infof("Sunucu %s adresinde dinliyor", addr)
	if err := app.Listen(addr); err != nil {
		configslog.Log.Fatal("Sunucu başlatılamadı", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
