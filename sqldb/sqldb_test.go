package sqldb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a sqlite file, or the mysql server of BROWSER_MYSQL_URL
// when set.
func newTestDB(t *testing.T) *Sqldb {
	t.Helper()

	opts := []Option{
		WithDriver(SQLite),
		WithConnURL(filepath.Join(t.TempDir(), "browser.db")),
	}
	if u := os.Getenv("BROWSER_MYSQL_URL"); u != "" {
		opts = []Option{WithDriver(MySQL), WithConnURL(u)}
	}

	db, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(WithDriver("oracle"))
	assert.Error(t, err)
}

func TestSqldb_CreateTableDriver(t *testing.T) {
	type args struct {
		t TableData
	}
	name := "test_create_table"

	tests := []struct {
		name    string
		args    args
		wantErr bool
		errIs   error
	}{
		{
			name: "create_without_column",
			args: args{TableData{
				TableName: name,
			}},
			wantErr: true,
		},
		{
			name: "create_not_valid_table",
			args: args{TableData{
				TableName: name,
				ColumnNames: []Field{
					{Title: "标签", Type: "VARCHAR("},
					{Title: "URL", Type: "VARCHAR(255)"},
				},
			}},
			wantErr: true,
		},
		{
			name: "create_valid_table",
			args: args{TableData{
				TableName: name,
				ColumnNames: []Field{
					{Title: "标签", Type: "MEDIUMTEXT"},
					{Title: "URL", Type: "VARCHAR(255)"},
				},
			}},
			wantErr: false,
		},
		{
			name: "create_valid_table_with_primary_key",
			args: args{TableData{
				TableName: name,
				ColumnNames: []Field{
					{Title: "标签", Type: "MEDIUMTEXT"},
					{Title: "URL", Type: "VARCHAR(255)"},
				},
				AutoKey: true,
			}},
			wantErr: false,
		},
	}

	sqldb := newTestDB(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sqldb.CreateTable(tt.args.t)
			if tt.wantErr {
				assert.NotNil(t, err, tt.name)
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}
			} else {
				assert.Nil(t, err, tt.name)
			}
			assert.NoError(t, sqldb.DropTable(tt.args.t))
		})
	}
}

func TestSqldb_InsertTable(t *testing.T) {
	type args struct {
		t TableData
	}
	tableName := "test_insert_table"
	columnNames := []Field{{Title: "label", Type: "MEDIUMTEXT"}, {Title: "amount", Type: "VARCHAR(64)"}}
	tests := []struct {
		name    string
		args    args
		wantErr bool
		errIs   error
	}{
		{
			name: "insert_data",
			args: args{TableData{
				TableName:   tableName,
				ColumnNames: columnNames,
				Args:        []interface{}{int64(1), "Checking", "12.34"},
				DataCount:   1,
				AutoKey:     true,
			}},
			wantErr: false,
		},
		{
			name: "insert_multi_data",
			args: args{TableData{
				TableName:   tableName,
				ColumnNames: columnNames,
				Args:        []interface{}{int64(2), "Savings", "88.88", int64(3), "Loan", "-99.99"},
				DataCount:   2,
				AutoKey:     true,
			}},
			wantErr: false,
		},
		{
			name: "insert_multi_data_wrong_count",
			args: args{TableData{
				TableName:   tableName,
				ColumnNames: columnNames,
				Args:        []interface{}{int64(4), "Card", "1", int64(5), "Card", "2"},
				DataCount:   1,
				AutoKey:     true,
			}},
			wantErr: true,
			errIs:   ErrArgCount,
		},
		{
			name: "insert_short_data",
			args: args{TableData{
				TableName:   tableName,
				ColumnNames: columnNames,
				Args:        []interface{}{int64(6), "Card"},
				DataCount:   1,
				AutoKey:     true,
			}},
			wantErr: true,
			errIs:   ErrArgCount,
		},
		{
			name: "insert_duplicate_key",
			args: args{TableData{
				TableName:   tableName,
				ColumnNames: columnNames,
				Args:        []interface{}{int64(1), "Checking", "12.34"},
				DataCount:   1,
				AutoKey:     true,
			}},
			wantErr: true,
		},
	}

	sqldb := newTestDB(t)
	err := sqldb.CreateTable(tests[0].args.t)
	require.NoError(t, err)
	defer sqldb.DropTable(tests[0].args.t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sqldb.Insert(tt.args.t)
			if tt.wantErr {
				assert.NotNil(t, err, tt.name)
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}
			} else {
				assert.Nil(t, err, tt.name)
			}
		})
	}

	var count int
	require.NoError(t, sqldb.DB().QueryRow("SELECT COUNT(*) FROM "+tableName).Scan(&count))
	assert.Equal(t, 3, count)
}
