package builder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/parley-chat/parley/internal/dto"
)

// Conn исполнитель запроса: *sql.DB или *sql.Tx
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Dialect стиль плейсхолдеров целевой базы
type Dialect int

const (
	Question Dialect = iota // ?      (sqlite)
	Dollar                  // $1..$n (postgres)
)

// Table описание таблицы для билдера. Singular используется как префикс
// алиасов колонок, чтобы плоские join-строки не конфликтовали по именам
type Table struct {
	Name     string
	Singular string
	Columns  []string
}

type statementKind int

const (
	kindNone statementKind = iota
	kindFind
	kindCount
	kindSum
	kindCreate
	kindUpdate
	kindDestroy
)

type join struct {
	table Table
	on    string
}

// Builder изменяемый построитель одного SQL-выражения
type Builder struct {
	dialect Dialect
	table   Table
	kind    statementKind
	sumCol  string
	joins   []join
	wheres  []string
	args    []any
	orderBy string
	limit   *int
	offset  *int
	values  map[string]any
}

func New(table Table, dialect Dialect) *Builder {
	return &Builder{dialect: dialect, table: table}
}

func (b *Builder) Find() *Builder {
	b.kind = kindFind
	return b
}

func (b *Builder) Count() *Builder {
	b.kind = kindCount
	return b
}

func (b *Builder) Sum(column string) *Builder {
	b.kind = kindSum
	b.sumCol = column
	return b
}

func (b *Builder) Create(values map[string]any) *Builder {
	b.kind = kindCreate
	b.values = values
	return b
}

func (b *Builder) Update(values map[string]any) *Builder {
	b.kind = kindUpdate
	b.values = values
	return b
}

func (b *Builder) Destroy() *Builder {
	b.kind = kindDestroy
	return b
}

// Include добавляет LEFT JOIN; колонки присоединённой таблицы попадают
// в выборку с префиксом её singular-имени
func (b *Builder) Include(t Table, on string) *Builder {
	b.joins = append(b.joins, join{table: t, on: on})
	return b
}

// Where добавляет условие через AND
func (b *Builder) Where(cond string, args ...any) *Builder {
	b.wheres = append(b.wheres, cond)
	b.args = append(b.args, args...)
	return b
}

func (b *Builder) OrderBy(expr string) *Builder {
	b.orderBy = expr
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.limit = &n
	return b
}

func (b *Builder) Offset(n int) *Builder {
	b.offset = &n
	return b
}

// Build возвращает запрос и параметры.
// update и destroy без where не собираются
func (b *Builder) Build() (string, []any, error) {
	switch b.kind {
	case kindFind, kindCount, kindSum:
		return b.buildSelect()
	case kindCreate:
		return b.buildInsert()
	case kindUpdate:
		return b.buildUpdate()
	case kindDestroy:
		return b.buildDelete()
	default:
		return "", nil, errors.New("builder: statement kind not set")
	}
}

func (b *Builder) buildSelect() (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")

	switch b.kind {
	case kindCount:
		sb.WriteString("COUNT(*) AS total")
	case kindSum:
		fmt.Fprintf(&sb, "COALESCE(SUM(%s), 0) AS total", b.sumCol)
	default:
		cols := aliasedColumns(b.table)
		for _, j := range b.joins {
			cols = append(cols, aliasedColumns(j.table)...)
		}
		sb.WriteString(strings.Join(cols, ", "))
	}

	fmt.Fprintf(&sb, " FROM %s", b.table.Name)
	b.writeJoins(&sb)
	b.writeWhere(&sb)

	args := append([]any(nil), b.args...)
	if b.kind == kindFind {
		if b.orderBy != "" {
			fmt.Fprintf(&sb, " ORDER BY %s", b.orderBy)
		}
		if b.limit != nil {
			sb.WriteString(" LIMIT ?")
			args = append(args, *b.limit)
		}
		if b.offset != nil {
			sb.WriteString(" OFFSET ?")
			args = append(args, *b.offset)
		}
	}

	return b.rebind(sb.String()), args, nil
}

func (b *Builder) buildInsert() (string, []any, error) {
	if len(b.values) == 0 {
		return "", nil, errors.New("builder: create requires values")
	}
	cols := sortedKeys(b.values)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		placeholders[i] = "?"
		args[i] = b.values[c]
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		b.table.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)
	return b.rebind(query), args, nil
}

func (b *Builder) buildUpdate() (string, []any, error) {
	if len(b.wheres) == 0 {
		return "", nil, errors.New("builder: update without where is not allowed")
	}
	if len(b.values) == 0 {
		return "", nil, errors.New("builder: update requires values")
	}
	cols := sortedKeys(b.values)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(b.args))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = ?", c)
		args = append(args, b.values[c])
	}
	args = append(args, b.args...)

	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET %s", b.table.Name, strings.Join(sets, ", "))
	b.writeWhere(&sb)
	return b.rebind(sb.String()), args, nil
}

func (b *Builder) buildDelete() (string, []any, error) {
	if len(b.wheres) == 0 {
		return "", nil, errors.New("builder: destroy without where is not allowed")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "DELETE FROM %s", b.table.Name)
	b.writeWhere(&sb)
	return b.rebind(sb.String()), append([]any(nil), b.args...), nil
}

func (b *Builder) writeJoins(sb *strings.Builder) {
	for _, j := range b.joins {
		fmt.Fprintf(sb, " LEFT JOIN %s ON %s", j.table.Name, j.on)
	}
}

func (b *Builder) writeWhere(sb *strings.Builder) {
	if len(b.wheres) > 0 {
		fmt.Fprintf(sb, " WHERE %s", strings.Join(b.wheres, " AND "))
	}
}

// rebind переводит ? в $N для postgres
func (b *Builder) rebind(query string) string {
	if b.dialect == Question {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

// Execute собирает и исполняет запрос. Для find/count/sum возвращает
// строки в виде dto.Row, для мутаций nil
func (b *Builder) Execute(ctx context.Context, conn Conn) ([]dto.Row, error) {
	query, args, err := b.Build()
	if err != nil {
		return nil, err
	}

	switch b.kind {
	case kindFind, kindCount, kindSum:
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("builder: query failed: %w", err)
		}
		defer rows.Close()
		return scanRows(rows)
	default:
		if _, err := conn.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("builder: exec failed: %w", err)
		}
		return nil, nil
	}
}

func scanRows(rows *sql.Rows) ([]dto.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []dto.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(dto.Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func aliasedColumns(t Table) []string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = fmt.Sprintf("%s.%s AS %s_%s", t.Name, c, t.Singular, c)
	}
	return cols
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
