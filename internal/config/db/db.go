package db

import (
	"fmt"
	"log"
	"strings"

	"github.com/linskybing/grant-review/internal/config"
	"github.com/linskybing/grant-review/internal/domain/applicant"
	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/internal/domain/decision"
	"github.com/linskybing/grant-review/internal/domain/proposal"
	"github.com/linskybing/grant-review/internal/domain/reveal"
	"github.com/linskybing/grant-review/internal/domain/review"
	"github.com/linskybing/grant-review/internal/domain/reviewer"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Models lists every table owned by the service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&call.Call{},
		&applicant.Applicant{},
		&proposal.Proposal{},
		&proposal.Attachment{},
		&reviewer.Reviewer{},
		&reviewer.Area{},
		&review.Assignment{},
		&review.Review{},
		&decision.Decision{},
		&reveal.Record{},
		&audit.Entry{},
	}
}

// Open connects with the given driver. Unique-key violations are translated
// to gorm.ErrDuplicatedKey so write-once rules can be detected uniformly.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// DSN builds a connection string from the loaded configuration unless
// DB_DSN was given explicitly.
func DSN() string {
	if config.DbDSN != "" {
		return config.DbDSN
	}
	switch strings.ToLower(config.DbDriver) {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			config.DbUser, config.DbPassword, config.DbHost, config.DbPort, config.DbName)
	case "sqlite", "sqlite3":
		return config.DbName + ".db"
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			config.DbHost, config.DbPort, config.DbUser, config.DbPassword, config.DbName)
	}
}

func Init() {
	var err error
	DB, err = Open(config.DbDriver, DSN())
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}
	if err := AutoMigrate(DB); err != nil {
		log.Fatal("Failed to auto migrate:", err)
	}
	log.Println("Database connected and migrated")
}
