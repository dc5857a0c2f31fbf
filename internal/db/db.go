package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

var ErrEmptyDSN = errors.New("DATABASE_URL is empty")

// Connect opens the Postgres pool and stores it in DB.
func Connect(dsn string) error {
	if dsn == "" {
		return ErrEmptyDSN
	}

	// Route gorm's slow query log through the process logger.
	lg := gormlogger.New(
		zap.NewStdLog(logger.L().Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: lg,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = conn
	logger.L().Info("connected to database")
	return nil
}
