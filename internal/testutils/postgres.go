package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/linskybing/grant-review/internal/config/db"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	_ "github.com/lib/pq"
)

// SetupPostgresForIntegration starts a throwaway Postgres (or uses
// TEST_DB_DSN) and returns a migrated gorm handle.
func SetupPostgresForIntegration() (*gorm.DB, func()) {
	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		sqlDB := openWithRetry(dsn)
		return migrate(sqlDB), func() { _ = sqlDB.Close() }
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_USER":     "test",
			"POSTGRES_DB":       "grant_review",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatal(err)
	}

	host, err := pg.Host(ctx)
	if err != nil {
		log.Fatal(err)
	}
	port, err := pg.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatal(err)
	}

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/grant_review?sslmode=disable", host, port.Port())
	sqlDB := openWithRetry(dsn)

	cleanup := func() {
		_ = sqlDB.Close()
		_ = pg.Terminate(ctx)
	}
	return migrate(sqlDB), cleanup
}

func openWithRetry(dsn string) *sql.DB {
	var sqlDB *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		sqlDB, err = sql.Open("postgres", dsn)
		if err == nil {
			err = sqlDB.Ping()
			if err == nil {
				return sqlDB
			}
		}
		time.Sleep(1 * time.Second)
	}
	log.Fatal(err)
	return nil
}

func migrate(sqlDB *sql.DB) *gorm.DB {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		log.Fatal(err)
	}
	return gdb
}
