package mock

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var once sync.Once
var db *Db

type Db struct {
	DbConn *gorm.DB
	models []any
	tables map[string]any
}

// NewDb configures a shared in-memory sqlite database holding the given models.
// Models are migrated in the order given.
func NewDb(models ...any) *Db {
	if db == nil {
		once.Do(
			func() {
				db = open(models)
			},
		)
	}

	return db
}

func open(models []any) *Db {
	dbSQL, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		panic(err)
	}

	dbSQL.SetMaxOpenConns(1)

	dbConn, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	newDbMock := &Db{
		DbConn: dbConn,
		models: models,
		tables: make(map[string]any, len(models)),
	}
	for _, model := range models {
		stmt := &gorm.Statement{DB: dbConn}
		if err := stmt.Parse(model); err != nil {
			panic(fmt.Sprintf("failed to parse model %T. err: %s", model, err.Error()))
		}
		newDbMock.tables[stmt.Schema.Table] = model
	}

	if err = newDbMock.ClearDB(); err != nil {
		panic(fmt.Sprintf("failed to clear database. err: %s", err.Error()))
	}

	return newDbMock
}

// ClearDB recreates every table.
func (d *Db) ClearDB() (err error) {
	for attempt := 1; attempt <= 3; attempt++ {
		if err = d.init(); err == nil {
			if err = d.checkTables(); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("failed to clear database after 3 attempts: %w", err)
}

func (d *Db) init() error {
	return d.DbConn.Transaction(func(tx *gorm.DB) error {
		for i := len(d.models) - 1; i >= 0; i-- {
			if err := tx.Migrator().DropTable(d.models[i]); err != nil {
				return err
			}
		}
		if err := tx.AutoMigrate(d.models...); err != nil {
			return err
		}
		err := tx.Exec("DELETE FROM sqlite_sequence").Error
		if err != nil && !strings.Contains(err.Error(), "no such table: sqlite_sequence") {
			return err
		}
		return nil
	})
}

func (d *Db) checkTables() error {
	for _, model := range d.models {
		if !d.DbConn.Migrator().HasTable(model) {
			return fmt.Errorf("table for model %T was not created", model)
		}
	}
	return nil
}

func (d *Db) GetModel(table string) (any, bool) {
	model, ok := d.tables[table]
	return model, ok
}
