package database

import (
	"chatstack_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(dsn string) {
	var err error

	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}

	gormConfig := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Error),
		PrepareStmt: false,
	}

	DB, err = gorm.Open(postgres.New(pgConfig), gormConfig)
	if err != nil {
		logger.Get().Fatal("failed to connect to database", zap.Error(err))
	}

	sqlDB, err := DB.DB()
	if err != nil {
		logger.Get().Fatal("failed to get database instance", zap.Error(err))
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	logger.Get().Info("database connected")
}

func GetDB() *gorm.DB {
	return DB
}

func MigrateDatabase(models ...interface{}) error {
	for _, m := range models {
		if !DB.Migrator().HasTable(m) {
			if err := DB.Migrator().CreateTable(m); err != nil {
				return err
			}
		} else {
			if err := DB.Migrator().AutoMigrate(m); err != nil {
				return err
			}
		}
	}

	// The application keeps at most one active subscription per (user, plan);
	// the partial index makes the database enforce it too.
	return DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_subscription
		 ON subscriptions (user_id, plan_id) WHERE status = 'active'`,
	).Error
}
