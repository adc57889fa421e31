package migration

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Blank import required for PostgreSQL driver registration for migrations
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	// Blank import required for SQLite driver registration for migrations
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed sql/sqlite/*.sql sql/postgres/*.sql
var migrationsFS embed.FS

// Migrator интерфейс для самой библиотеки migrate.Migrate
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine фабрика мигратора, подменяется в тестах
type MigrationEngine func(driver, databaseURL string) (Migrator, error)

type Migration struct {
	driver      string
	databaseURL string
	engine      MigrationEngine
}

func NewMigration(driver, databaseURL string, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		driver:      driver,
		databaseURL: databaseURL,
		engine:      engine,
	}
}

// DefaultEngine: миграции встроены в бинарник, каталог выбирается по драйверу
func DefaultEngine(driver, databaseURL string) (Migrator, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("неизвестный драйвер миграций: %q", driver)
	}

	src, err := iofs.New(migrationsFS, "sql/"+driver)
	if err != nil {
		return nil, fmt.Errorf("источник миграций: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", src, databaseURL)
}

// SQLiteURL адрес базы SQLite в формате golang-migrate
func SQLiteURL(path string) string {
	return "sqlite3://" + path
}

func (mg *Migration) Up() (err error) {
	m, err := mg.engine(mg.driver, mg.databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration source error: %v", err, serr)
			} else {
				err = serr
			}
		}
		if dberr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration database error: %v", err, dberr)
			} else {
				err = dberr
			}
		}
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up error: %w", err)
	}
	return nil
}
