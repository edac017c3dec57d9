package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/fieldscan/internal/schema"
)

type sqliteLoader struct{}

func (sqliteLoader) Name() string         { return "sqlite" }
func (sqliteLoader) Extensions() []string { return []string{".sqlite", ".sqlite3", ".db"} }
func (sqliteLoader) CanLoad(path string) bool {
	return hasExt(path, ".sqlite", ".sqlite3", ".db")
}

// Load reads one table (opt.Table, else the first user table in creation order)
// with the driver's column types: INTEGER as int64, REAL as float64, TEXT as string,
// DATE/DATETIME columns as time.Time. BLOBs are read as text.
func (sqliteLoader) Load(path string, opt Options) (*Input, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	tables, err := userTables(ctx, db)
	if err != nil {
		return nil, err
	}
	table := opt.Table
	if table == "" {
		if len(tables) == 0 {
			return nil, fmt.Errorf("%w: database has no tables", schema.ErrMalformedInput)
		}
		table = tables[0]
	} else if !containsFold(tables, &table) {
		return nil, fmt.Errorf("table '%s' not found (available: %s)", opt.Table, strings.Join(tables, ", "))
	}

	q := "SELECT * FROM " + quoteIdent(table)
	if opt.MaxRows > 0 {
		q += fmt.Sprintf(" LIMIT %d", opt.MaxRows)
	}
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	names = dedupeHeader(names)
	t := schema.Table{Columns: make([]schema.Column, len(names))}
	for i, n := range names {
		t.Columns[i].Name = n
	}
	vals := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			t.Columns[i].Values = append(t.Columns[i].Values, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return tabular(t), nil
}

func userTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type IN ('table','view') AND name NOT LIKE 'sqlite_%' ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// containsFold reports whether name is in list ignoring case and, if so, rewrites
// name to the stored spelling.
func containsFold(list []string, name *string) bool {
	for _, s := range list {
		if strings.EqualFold(s, *name) {
			*name = s
			return true
		}
	}
	return false
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
