package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/psd401/aistudio-auth/migrate"
)

// TestMain runs DB migrations for store tests. The whole package is skipped
// when no test database is reachable.
func TestMain(m *testing.M) {
	dsn := getTestDSN()
	if strings.TrimSpace(dsn) == "" {
		log.Printf("no test DSN available, skipping store tests")
		return
	}

	driver := "postgres"

	// Wait for DB to be ready
	var ready bool
	for i := 0; i < 20; i++ {
		if db, err := sql.Open(driver, dsn); err == nil {
			if err = db.Ping(); err == nil {
				ready = true
				_ = db.Close()
				break
			}
			_ = db.Close()
		}
		time.Sleep(1 * time.Second)
	}
	if !ready {
		log.Printf("postgres is not ready, skipping store tests: dsn=%s", dsn)
		return
	}

	if err := migrate.Run(migrate.Options{
		Driver:  driver,
		DSN:     dsn,
		Command: "up",
		Logger:  log.New(os.Stdout, "[store-migrate] ", log.LstdFlags),
	}); err != nil {
		panic(fmt.Sprintf("store test migration failed: %v", err))
	}

	code := m.Run()
	if code != 0 {
		panic(fmt.Sprintf("store tests failed with code %d", code))
	}
}

func getTestDSN() string {
	return os.Getenv("TEST_DATABASE_URL")
}

func getTestGormDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(getTestDSN())
	if err != nil {
		t.Skip("no database connection available")
	}
	return db
}
