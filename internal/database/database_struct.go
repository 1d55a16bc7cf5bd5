package database

import (
	"database/sql"

	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/builder"
)

// Database обёртка над gorm-подключением. Отдаёт и ORM-хэндл для
// транзакций с моделями, и голый *sql.DB для билдера
type Database struct {
	db      *gorm.DB
	conn    *sql.DB
	dialect builder.Dialect
}

func NewDatabase(db *gorm.DB, dialect builder.Dialect) (*Database, error) {
	conn, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &Database{db: db, conn: conn, dialect: dialect}, nil
}

// Gorm возвращает ORM-хэндл
func (d *Database) Gorm() *gorm.DB {
	return d.db
}

// Conn возвращает соединение для билдера
func (d *Database) Conn() builder.Conn {
	return d.conn
}

// Dialect возвращает стиль плейсхолдеров базы
func (d *Database) Dialect() builder.Dialect {
	return d.dialect
}

// Transaction выполняет fn в одной транзакции
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.db.Transaction(fn)
}

// Builder создаёт билдер с диалектом базы
func (d *Database) Builder(table builder.Table) *builder.Builder {
	return builder.New(table, d.dialect)
}
