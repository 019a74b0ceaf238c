package entity

import (
	"fmt"
	"sort"
	"strings"
)

// Query builds and runs statements against the table of a Definition
type Query struct {
	Error error

	db      *DB
	def     *Definition
	builder QueryBuilder
	columns []string
	from    string
	eager   []eagerLoad
}

func newQuery(db *DB, def *Definition) *Query {
	return &Query{
		db:      db,
		def:     def,
		builder: db.Driver.NewQueryBuilder(),
	}
}

// AddError add error to query
func (q *Query) AddError(err error) error {
	if q.Error == nil {
		q.Error = err
	} else if err != nil {
		q.Error = fmt.Errorf("%v; %w", q.Error, err)
	}
	return q.Error
}

// Clone returns an independent copy of q
func (q *Query) Clone() *Query {
	clone := *q
	clone.builder = q.builder.Clone()
	clone.columns = append([]string(nil), q.columns...)
	clone.eager = append([]eagerLoad(nil), q.eager...)
	return &clone
}

// Definition returns the definition queried
func (q *Query) Definition() *Definition {
	return q.def
}

// DB returns the db statements run on
func (q *Query) DB() *DB {
	return q.db
}

// Builder returns the underlying query builder
func (q *Query) Builder() QueryBuilder {
	return q.builder
}

// Table returns the table queried
func (q *Query) Table() string {
	if q.from != "" {
		return q.from
	}
	return q.def.TableName(q.db.NamingStrategy)
}

// Select adds columns to the select list, "*" when none is given
func (q *Query) Select(columns ...string) *Query {
	q.columns = append(q.columns, columns...)
	return q
}

// From overrides the table selected from
func (q *Query) From(table string) *Query {
	q.from = table
	return q
}

// Where adds a condition, "?" placeholders are bound to args
func (q *Query) Where(condition string, args ...interface{}) *Query {
	q.builder.Where(condition, normalizeArgs(args)...)
	return q
}

// WhereIn adds a "column IN (values)" condition
func (q *Query) WhereIn(column string, values []interface{}) *Query {
	q.builder.WhereIn(column, normalizeArgs(values))
	return q
}

// WhereNotNull adds a "column IS NOT NULL" condition
func (q *Query) WhereNotNull(column string) *Query {
	q.builder.WhereNotNull(column)
	return q
}

// WhereEquals adds an equality condition for every entry of values
func (q *Query) WhereEquals(values map[string]interface{}) *Query {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		q.Where(q.db.Driver.QuoteName(key)+" = ?", values[key])
	}
	return q
}

// Having adds a having condition
func (q *Query) Having(condition string, args ...interface{}) *Query {
	q.builder.Having(condition, normalizeArgs(args)...)
	return q
}

// Join adds a join, kind is "INNER", "LEFT"...
func (q *Query) Join(kind, table, on string) *Query {
	q.builder.Join(kind, table, on)
	return q
}

// Order adds order by expressions, "id DESC"
func (q *Query) Order(columns ...string) *Query {
	q.builder.Order(columns...)
	return q
}

// Group adds group by columns
func (q *Query) Group(columns ...string) *Query {
	q.builder.Group(columns...)
	return q
}

// SetLimit limits the rows returned, builders without limit support record ErrUnsupportedOperation
func (q *Query) SetLimit(limit, offset int) *Query {
	lb, ok := q.builder.(LimitBuilder)
	if !ok {
		q.AddError(fmt.Errorf("%w: %s query builder has no limit support", ErrUnsupportedOperation, q.db.Driver.Name()))
		return q
	}
	lb.SetLimit(limit, offset)
	return q
}

// Apply forwards a builder method by name, names outside the allow-list fail with ErrMethodNotSupported
func (q *Query) Apply(method string, args ...interface{}) (*Query, error) {
	err := q.apply(method, args)
	if err != nil {
		q.AddError(err)
	}
	return q, err
}

func (q *Query) apply(method string, args []interface{}) error {
	invalid := func() error {
		return fmt.Errorf("%w: %s%v", ErrInvalidArgument, method, args)
	}

	switch strings.ToLower(method) {
	case "select":
		columns, ok := stringArgs(args)
		if !ok {
			return invalid()
		}
		q.Select(columns...)
	case "from":
		if len(args) != 1 {
			return invalid()
		}
		table, ok := args[0].(string)
		if !ok {
			return invalid()
		}
		q.From(table)
	case "where", "having":
		if len(args) == 0 {
			return invalid()
		}
		condition, ok := args[0].(string)
		if !ok {
			return invalid()
		}
		if strings.EqualFold(method, "where") {
			q.Where(condition, args[1:]...)
		} else {
			q.Having(condition, args[1:]...)
		}
	case "wherein":
		if len(args) != 2 {
			return invalid()
		}
		column, ok := args[0].(string)
		if !ok {
			return invalid()
		}
		q.WhereIn(column, ValueOf(args[1]).Slice())
	case "wherenotnull":
		columns, ok := stringArgs(args)
		if !ok || len(columns) != 1 {
			return invalid()
		}
		q.WhereNotNull(columns[0])
	case "join", "innerjoin", "leftjoin", "rightjoin", "outerjoin":
		strs, ok := stringArgs(args)
		kind := strings.ToUpper(strings.TrimSuffix(strings.ToLower(method), "join"))
		switch {
		case !ok:
			return invalid()
		case kind == "" && len(strs) == 3:
			q.Join(strs[0], strs[1], strs[2])
		case kind != "" && len(strs) == 2:
			q.Join(kind, strs[0], strs[1])
		default:
			return invalid()
		}
	case "order", "orderby":
		columns, ok := stringArgs(args)
		if !ok {
			return invalid()
		}
		q.Order(columns...)
	case "group", "groupby":
		columns, ok := stringArgs(args)
		if !ok {
			return invalid()
		}
		q.Group(columns...)
	case "setlimit", "limit":
		if len(args) == 0 || len(args) > 2 {
			return invalid()
		}
		limit, offset := ValueOf(args[0]).Int(), int64(0)
		if len(args) == 2 {
			offset = ValueOf(args[1]).Int()
		}
		if _, ok := q.builder.(LimitBuilder); !ok {
			return fmt.Errorf("%w: %s query builder has no limit support", ErrUnsupportedOperation, q.db.Driver.Name())
		}
		q.SetLimit(int(limit), int(offset))
	default:
		return fmt.Errorf("%w: %s on %s query", ErrMethodNotSupported, method, q.def.Name)
	}

	return nil
}

func stringArgs(args []interface{}) ([]string, bool) {
	strs := make([]string, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			strs = append(strs, v)
		case []string:
			strs = append(strs, v...)
		default:
			return nil, false
		}
	}
	return strs, true
}

// normalizeArgs unwraps Values so drivers receive plain values
func normalizeArgs(args []interface{}) []interface{} {
	result := make([]interface{}, len(args))
	for idx, arg := range args {
		if v, ok := arg.(Value); ok {
			arg, _ = v.Value()
		}
		result[idx] = arg
	}
	return result
}

// ToSQL returns the select statement with its vars inlined, for logging
func (q *Query) ToSQL(columns ...string) string {
	sql, vars := q.selectBuilder(columns).Build()
	return q.db.Driver.Explain(sql, vars...)
}

func (q *Query) selectBuilder(columns []string) QueryBuilder {
	if len(columns) == 0 {
		columns = q.columns
	}
	if len(columns) == 0 {
		columns = []string{"*"}
	}

	resolved := make([]string, len(columns))
	for idx, column := range columns {
		resolved[idx] = q.def.Alias(column, column)
	}
	return q.builder.Clone().Select(resolved...).From(q.Table())
}

// Find returns the model with primary key id, the second result is false when there is none
func (q *Query) Find(id interface{}, columns ...string) (*Model, bool, error) {
	clone := q.Clone()
	clone.Where(q.db.Driver.QuoteName(q.qualifiedPrimaryKey())+" = ?", id)

	results, err := clone.Get(columns...)
	if err != nil {
		return nil, false, err
	}
	return results.First()
}

// FindLast returns the model with the highest primary key, it requires limit support
func (q *Query) FindLast(columns ...string) (*Model, bool, error) {
	clone := q.Clone()
	if _, ok := clone.builder.(LimitBuilder); !ok {
		return nil, false, fmt.Errorf("%w: %s query builder has no limit support", ErrUnsupportedOperation, q.db.Driver.Name())
	}

	clone.Order(q.db.Driver.QuoteName(q.qualifiedPrimaryKey())+" DESC").SetLimit(1, 0)

	results, err := clone.Get(columns...)
	if err != nil {
		return nil, false, err
	}
	return results.First()
}

// First returns the first matching model, the second result is false when there is none
func (q *Query) First(columns ...string) (*Model, bool, error) {
	clone := q.Clone()
	if _, ok := clone.builder.(LimitBuilder); ok {
		clone.SetLimit(1, 0)
	}

	results, err := clone.Get(columns...)
	if err != nil {
		return nil, false, err
	}
	return results.First()
}

// Get runs the select, hydrates the rows and eager loads the relations registered with With
func (q *Query) Get(columns ...string) (*Collection, error) {
	if q.Error != nil {
		return nil, q.Error
	}

	rows, err := q.db.loadRowList(q.selectBuilder(columns))
	if err != nil {
		return nil, err
	}

	models := q.Hydrate(rows)
	if len(models) > 0 && len(q.eager) > 0 {
		if err := q.eagerLoadRelations(models); err != nil {
			return nil, err
		}
	}

	return NewCollection(models...), nil
}

// Count returns the number of matching rows
func (q *Query) Count() (int64, error) {
	if q.Error != nil {
		return 0, q.Error
	}

	row, err := q.db.loadRow(q.builder.Clone().Select("COUNT(*) AS aggregate").From(q.Table()))
	if err != nil {
		return 0, err
	}

	for _, value := range row {
		return ValueOf(value).Int(), nil
	}
	return 0, nil
}

// Hydrate creates existing models from raw rows without going through Set
func (q *Query) Hydrate(rows []map[string]interface{}) []*Model {
	models := make([]*Model, 0, len(rows))
	for _, row := range rows {
		m := q.def.newInstance(q.db)
		m.attributes.SetRawAttributes(row, true)
		m.exists = true
		models = append(models, m)
	}
	return models
}

// UpdateColumns updates the matching rows, values go through the driver as they are
func (q *Query) UpdateColumns(values map[string]interface{}) (int64, error) {
	if q.Error != nil {
		return 0, q.Error
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	qb := q.builder.Clone().Update(q.Table())
	for _, key := range keys {
		qb.Set(key, normalizeArgs([]interface{}{values[key]})[0])
	}
	return q.db.exec(qb)
}

func (q *Query) qualifiedPrimaryKey() string {
	return q.Table() + "." + q.def.PrimaryKey
}

func (q *Query) insert(m *Model) error {
	var (
		keys   = m.attributes.Keys()
		values = make([]interface{}, len(keys))
		qb     = q.db.Driver.NewQueryBuilder().Insert(m.Table()).Columns(keys...)
	)

	for idx, key := range keys {
		raw, _ := m.attributes.GetRaw(key)
		value, err := raw.Value()
		if err != nil {
			return fmt.Errorf("insert %s.%s: %w", m.def.Name, key, err)
		}
		values[idx] = value
	}
	qb.Values(values...)

	if m.Incrementing() {
		qb.Returning(m.PrimaryKey())
	}

	if _, err := q.db.exec(qb); err != nil {
		return err
	}

	if m.Incrementing() {
		id, err := q.db.Driver.LastInsertID()
		if err != nil {
			return err
		}
		if id := ValueOf(id); !id.IsNull() && id.String() != "" && id.String() != "0" {
			m.attributes.SetRaw(m.PrimaryKey(), id)
		}
	}

	return nil
}

func (q *Query) update(m *Model) (int64, error) {
	dirty := m.attributes.Dirty()
	if len(dirty) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(dirty))
	for key := range dirty {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	qb := q.db.Driver.NewQueryBuilder().Update(m.Table())
	for _, key := range keys {
		value, err := dirty[key].Value()
		if err != nil {
			return 0, fmt.Errorf("update %s.%s: %w", m.def.Name, key, err)
		}
		qb.Set(key, value)
	}

	return q.db.exec(qb.Where(q.wherePrimaryKey(m)))
}

func (q *Query) delete(m *Model) (int64, error) {
	qb := q.db.Driver.NewQueryBuilder().Delete(m.Table())
	return q.db.exec(qb.Where(q.wherePrimaryKey(m)))
}

func (q *Query) wherePrimaryKey(m *Model) (string, interface{}) {
	raw, _ := m.attributes.GetRaw(m.PrimaryKey())
	value, _ := raw.Value()
	return q.db.Driver.QuoteName(m.PrimaryKey()) + " = ?", value
}
