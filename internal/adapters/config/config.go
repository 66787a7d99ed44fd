package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	postgresStorage "github.com/Badsnus/qr-studio/internal/adapters/database/postgres"
	redisStorage "github.com/Badsnus/qr-studio/internal/adapters/database/redis"
	"github.com/Badsnus/qr-studio/pkg/logger"
)

type Config struct {
	// Database is nil unless service.database.enabled is set.
	Database *gorm.DB
	// Redis is nil unless service.redis.enabled is set.
	Redis *redisStorage.Client
}

func setDefaults() {
	viper.SetDefault("settings.timezone", "UTC")
	viper.SetDefault("settings.logs-dir", "logs")

	viper.SetDefault("studio.container-size", 450)
	viper.SetDefault("studio.output-dir", "exports")
	viper.SetDefault("studio.export-format", "png")
	viper.SetDefault("studio.file-name", "qr_code")
	viper.SetDefault("studio.quiet-zone", 4)

	viper.SetDefault("fetcher.timeout", 10*time.Second)
	viper.SetDefault("fetcher.max-bytes", 10<<20)
	viper.SetDefault("fetcher.cache-size", 64)

	viper.SetDefault("service.database.port", 5432)
	viper.SetDefault("service.redis.port", 6379)
	viper.SetDefault("service.redis.ttl", 24*time.Hour)
}

func initConfig() {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("QR_STUDIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(err)
		}
	}
}

func Get() *Config {
	initConfig()

	location, err := time.LoadLocation(viper.GetString("settings.timezone"))
	if err != nil {
		panic(err)
	}

	err = logger.Init(logger.Config{
		Debug:        viper.GetBool("settings.debug"),
		TimeLocation: location,
		LogToFile:    viper.GetBool("settings.log-to-file"),
		LogsDir:      viper.GetString("settings.logs-dir"),
	})
	if err != nil {
		panic(err)
	}

	cfg := &Config{}

	if viper.GetBool("service.database.enabled") {
		cfg.Database = openDatabase(location)
	}

	if viper.GetBool("service.redis.enabled") {
		cacheLogger, err := logger.Named("logo-cache")
		if err != nil {
			logger.Log.Panicf("Failed to create logo cache logger: %v", err)
		}
		cfg.Redis, err = redisStorage.New(redisStorage.Options{
			Host:     viper.GetString("service.redis.host"),
			Port:     viper.GetString("service.redis.port"),
			Password: viper.GetString("service.redis.password"),
			DB:       viper.GetInt("service.redis.db"),
			LogoTTL:  viper.GetDuration("service.redis.ttl"),
			Logger:   cacheLogger,
		})
		if err != nil {
			logger.Log.Panicf("Failed to connect to redis: %v", err)
		}
		logger.Log.Info("Successfully connected to redis")
	}

	return cfg
}

func openDatabase(location *time.Location) *gorm.DB {
	var gormConfig *gorm.Config
	if viper.GetBool("settings.debug") {
		newLogger := gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
		gormConfig = &gorm.Config{
			Logger: newLogger,
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		}
	}

	dsn := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=disable TimeZone=%s",
		viper.GetString("service.database.user"),
		viper.GetString("service.database.password"),
		viper.GetString("service.database.name"),
		viper.GetString("service.database.host"),
		viper.GetInt("service.database.port"),
		location.String(),
	)

	database, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		logger.Log.Panicf("Failed to connect to the database: %v", err)
	} else {
		logger.Log.Info("Successfully connected to the database")
	}

	errMigrate := database.AutoMigrate(postgresStorage.Migrations...)
	if errMigrate != nil {
		logger.Log.Panicf("Failed to migrate database: %v", errMigrate)
	}

	return database
}
