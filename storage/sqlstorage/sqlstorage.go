package sqlstorage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/dreamerjackson/browser/spider"
	"github.com/dreamerjackson/browser/sqldb"
)

// SQLStorage writes extracted objects in batches, one table per task rule.
// Columns are the item fields of the rule, then the URL and the time of
// the extraction.
type SQLStorage struct {
	dataDocker []*spider.DataCell // 分批输出结果缓存
	db         sqldb.DBer
	closer     func() error
	node       *snowflake.Node
	Table      map[string]struct{}
	options
}

func New(opts ...Option) (*SQLStorage, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	s := &SQLStorage{}
	s.options = options
	s.Table = make(map[string]struct{})

	var err error
	if s.node, err = snowflake.NewNode(s.nodeID); err != nil {
		return nil, err
	}

	db, err := sqldb.New(
		sqldb.WithDriver(s.driver),
		sqldb.WithConnURL(s.sqlURL),
		sqldb.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	s.db = db
	s.closer = db.Close

	return s, nil
}

func (s *SQLStorage) Save(dataCells ...*spider.DataCell) error {
	for _, cell := range dataCells {
		name, err := tableName(cell)
		if err != nil {
			return err
		}

		if _, ok := s.Table[name]; !ok {
			// 创建表
			err := s.db.CreateTable(sqldb.TableData{
				TableName:   name,
				ColumnNames: getFields(cell),
				AutoKey:     true,
			})
			if err != nil {
				return fmt.Errorf("create table %s: %w", name, err)
			}

			s.Table[name] = struct{}{}
		}

		if len(s.dataDocker) >= s.BatchCount {
			if err := s.Flush(); err != nil {
				return fmt.Errorf("insert data failed: %w", err)
			}
		}

		s.dataDocker = append(s.dataDocker, cell)
	}

	return nil
}

func tableName(cell *spider.DataCell) (string, error) {
	if _, ok := cell.Data["Task"].(string); !ok {
		return "", errors.New("data cell without task")
	}

	if _, ok := cell.Data["Rule"].(string); !ok {
		return "", errors.New("data cell without rule")
	}

	return cell.GetTableName(), nil
}

func getFields(cell *spider.DataCell) []sqldb.Field {
	var columnNames []sqldb.Field
	for _, field := range cell.Fields() {
		columnNames = append(columnNames, sqldb.Field{
			Title: field,
			Type:  "MEDIUMTEXT",
		})
	}

	columnNames = append(columnNames,
		sqldb.Field{Title: "URL", Type: "VARCHAR(255)"},
		sqldb.Field{Title: "Time", Type: "VARCHAR(255)"},
	)

	return columnNames
}

// Flush inserts the pending cells, one statement per table.
func (s *SQLStorage) Flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}

	defer func() {
		s.dataDocker = nil
	}()

	var (
		order  []string
		tables = make(map[string][]*spider.DataCell)
	)

	for _, cell := range s.dataDocker {
		name, err := tableName(cell)
		if err != nil {
			return err
		}
		if _, ok := tables[name]; !ok {
			order = append(order, name)
		}
		tables[name] = append(tables[name], cell)
	}

	var errs []error
	for _, name := range order {
		if err := s.insert(name, tables[name]); err != nil {
			errs = append(errs, fmt.Errorf("insert %s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

func (s *SQLStorage) insert(name string, cells []*spider.DataCell) error {
	fields := cells[0].Fields()
	args := make([]interface{}, 0, len(cells)*(len(fields)+3))

	for _, datacell := range cells {
		data, err := toMap(datacell.Data["Data"])
		if err != nil {
			return err
		}

		args = append(args, s.node.Generate().Int64())
		for _, field := range fields {
			args = append(args, columnValue(data[field]))
		}

		url, _ := datacell.Data["URL"].(string)
		tm, _ := datacell.Data["Time"].(string)
		args = append(args, url, tm)
	}

	return s.db.Insert(sqldb.TableData{
		TableName:   name,
		ColumnNames: getFields(cells[0]),
		Args:        args,
		DataCount:   len(cells),
		AutoKey:     true,
	})
}

// toMap returns the fields of an extracted object, going through its json
// form for structs.
func toMap(v interface{}) (map[string]interface{}, error) {
	switch v := v.(type) {
	case nil:
		return map[string]interface{}{}, nil
	case map[string]interface{}:
		return v, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	m := make(map[string]interface{})
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("data is not an object: %w", err)
	}

	return m, nil
}

func columnValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		j, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(j)
	}
}

// Close flushes the pending cells and closes the database.
func (s *SQLStorage) Close() error {
	err := s.Flush()
	if s.closer != nil {
		err = errors.Join(err, s.closer())
	}

	return err
}
