package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	MySQL  = "mysql"
	SQLite = "sqlite"
)

// ErrArgCount is returned by Insert when Args does not fill DataCount rows.
var ErrArgCount = errors.New("wrong number of values")

type DBer interface {
	CreateTable(t TableData) error
	Insert(t TableData) error
}

type Sqldb struct {
	options
	db *sql.DB
}

type Field struct {
	Title string
	Type  string
}

type TableData struct {
	TableName   string
	ColumnNames []Field       // 标题字段
	Args        []interface{} // 数据
	DataCount   int           // 插入数据的数量
	// AutoKey tables have a BIGINT id primary key. On insert the id is the
	// first value of every row.
	AutoKey bool
}

func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	d := &Sqldb{}
	d.options = options

	if err := d.OpenDB(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Sqldb) OpenDB() error {
	switch d.driver {
	case MySQL, SQLite:
	default:
		return fmt.Errorf("unsupported sql driver %q", d.driver)
	}

	db, err := sql.Open(d.driver, d.sqlURL)
	if err != nil {
		return err
	}

	if d.driver == SQLite {
		// 单个写连接，避免 database is locked
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(2048)
		db.SetMaxIdleConns(2048)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.db = db

	return nil
}

func (d *Sqldb) DB() *sql.DB {
	return d.db
}

func (d *Sqldb) Close() error {
	return d.db.Close()
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *Sqldb) CreateTable(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return errors.New("column can not be empty")
	}

	sql := `CREATE TABLE IF NOT EXISTS ` + quote(t.TableName) + " ("

	if t.AutoKey {
		sql += `id BIGINT NOT NULL PRIMARY KEY,`
	}

	for _, t := range t.ColumnNames {
		sql += quote(t.Title) + ` ` + t.Type + `,`
	}

	sql = sql[:len(sql)-1] + `)`
	if d.driver == MySQL {
		sql += ` ENGINE=MyISAM DEFAULT CHARSET=utf8`
	}
	sql += `;`

	d.logger.Debug("create table", zap.String("sql", sql))

	_, err := d.db.Exec(sql)

	return err
}

func (d *Sqldb) DropTable(t TableData) error {
	if t.TableName == "" {
		return errors.New("table name can not be empty")
	}

	sql := `DROP TABLE IF EXISTS ` + quote(t.TableName)

	d.logger.Debug("drop table", zap.String("sql", sql))

	_, err := d.db.Exec(sql)

	return err
}

func (d *Sqldb) Insert(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return errors.New("empty column")
	}

	columns := len(t.ColumnNames)
	sql := `INSERT INTO ` + quote(t.TableName) + `(`

	if t.AutoKey {
		sql += `id,`
		columns++
	}

	for _, v := range t.ColumnNames {
		sql += quote(v.Title) + ","
	}

	sql = sql[:len(sql)-1] + `) VALUES `

	if t.DataCount <= 0 || len(t.Args) != t.DataCount*columns {
		return fmt.Errorf("%w: %d values for %d rows of %d columns", ErrArgCount, len(t.Args), t.DataCount, columns)
	}

	blank := ",(" + strings.Repeat(",?", columns)[1:] + ")"
	sql += strings.Repeat(blank, t.DataCount)[1:] + `;`
	d.logger.Debug("insert table", zap.String("sql", sql))
	_, err := d.db.Exec(sql, t.Args...)

	return err
}
