package database

import (
	"fmt"
	stdlog "log"
	"time"

	"gamestore/backend/internal/logging"
	"gamestore/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Models lists every table the store owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tag{},
		&models.Game{},
		&models.WishlistEntry{},
		&models.FavoriteTag{},
		&models.CartItem{},
		&models.Purchase{},
		&models.Post{},
		&models.Comment{},
		&models.Review{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.ReviewLike{},
		&models.GameLike{},
	}
}

// GormConfig is shared by the server and the sqlite-backed tests.
// TranslateError lets callers detect gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(
			stdlog.New(logging.Writer(), "", 0),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		TranslateError: true,
	}
}

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logging.Info().Msg("Database connection established.")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	logging.Info().Msg("Database migrated successfully.")

	DB = db
	return db, nil
}

// Migrate creates or updates every store table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
