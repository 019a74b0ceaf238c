package entity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-entity/entity/logger"
)

func TestQueryBuilderPassthrough(t *testing.T) {
	driver := &fakeDriver{limits: true}
	db := newFakeDB(t, driver)
	banners := MustDefine(Definition{Name: "Banner", ColumnAlias: map[string]string{"createdAt": "created"}})

	q := banners.Query(db).
		Where("banners.id > ?", 1).
		WhereEquals(map[string]interface{}{"state": 1, "catid": "3"}).
		Order("banners.id DESC").
		SetLimit(2, 0)
	require.NoError(t, q.Error)

	assert.Equal(t, "SELECT id, created FROM banners WHERE banners.id > 1 AND catid = '3' AND state = 1 ORDER BY banners.id DESC LIMIT 2",
		q.ToSQL("id", "createdAt"))
	assert.Equal(t, "SELECT title FROM banners WHERE banners.id > 1 AND catid = '3' AND state = 1 ORDER BY banners.id DESC LIMIT 2",
		q.Clone().Select("title").ToSQL())
	assert.Equal(t, "banners", q.Table())
	assert.Same(t, banners, q.Definition())
	assert.Same(t, db, q.DB())
}

func TestQueryApply(t *testing.T) {
	users := MustDefine(Definition{Name: "User"})

	tests := []struct {
		name   string
		method string
		args   []interface{}
		want   string
		err    error
	}{
		{"where", "where", []interface{}{"users.id > ?", 43}, "SELECT * FROM users WHERE users.id > 43", nil},
		{"case insensitive", "WhereIn", []interface{}{"users.id", []int{1, 2}}, "SELECT * FROM users WHERE users.id IN (1, 2)", nil},
		{"where not null", "whereNotNull", []interface{}{"email"}, "SELECT * FROM users WHERE email IS NOT NULL", nil},
		{"left join", "leftJoin", []interface{}{"profiles", "profiles.user_id = users.id"}, "SELECT * FROM users LEFT JOIN profiles ON profiles.user_id = users.id", nil},
		{"join", "join", []interface{}{"INNER", "profiles", "profiles.user_id = users.id"}, "SELECT * FROM users INNER JOIN profiles ON profiles.user_id = users.id", nil},
		{"order", "orderBy", []interface{}{[]string{"name", "id"}}, "SELECT * FROM users ORDER BY name, id", nil},
		{"select", "select", []interface{}{"id", "name"}, "SELECT id, name FROM users", nil},
		{"limit", "limit", []interface{}{3}, "SELECT * FROM users LIMIT 3", nil},
		{"unsupported", "truncate", nil, "", ErrMethodNotSupported},
		{"where without condition", "where", nil, "", ErrInvalidArgument},
		{"select numbers", "select", []interface{}{1}, "", ErrInvalidArgument},
		{"join arity", "rightJoin", []interface{}{"profiles"}, "", ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := users.Query(newFakeDB(t, &fakeDriver{limits: true}))

			q, err := q.Apply(tt.method, tt.args...)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.ErrorIs(t, q.Error, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.ToSQL())
		})
	}
}

func TestQueryWithoutLimitSupport(t *testing.T) {
	driver := &fakeDriver{rows: []map[string]interface{}{{"id": 1}, {"id": 2}}}
	users := MustDefine(Definition{Name: "User"})
	db := newFakeDB(t, driver)

	_, _, err := users.Query(db).FindLast()
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	m, found, err := users.Query(db).First()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), m.PrimaryKeyValue().Interface())
	assert.Equal(t, "SELECT * FROM users", driver.lastStatement())

	_, err = users.Query(db).Apply("limit", 1)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	q := users.Query(db).SetLimit(1, 0)
	_, err = q.Get()
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = q.Count()
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestQueryReads(t *testing.T) {
	driver := &fakeDriver{limits: true, count: 5, rows: []map[string]interface{}{{"id": 100}}}
	users := MustDefine(Definition{Name: "User"})
	db := newFakeDB(t, driver)

	m, found, err := users.Query(db).FindLast("id")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, m.Exists())
	assert.Equal(t, "SELECT id FROM users ORDER BY users.id DESC LIMIT 1", driver.lastStatement())

	_, _, err = users.Query(db).Find(100)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE users.id = ?", driver.lastStatement())
	assert.Equal(t, []interface{}{100}, driver.vars[1])

	count, err := users.Query(db).Where("id > ?", 1).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.Equal(t, "SELECT COUNT(*) AS aggregate FROM users WHERE id > ?", driver.lastStatement())

	driver.rows = nil
	m, found, err = users.Query(db).Find(420)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, m)

	driver.err = errors.New("connection refused")
	_, err = users.Query(db).Get()
	assert.EqualError(t, err, "connection refused")
}

func TestQueryUpdateColumns(t *testing.T) {
	driver := &fakeDriver{}
	users := MustDefine(Definition{Name: "User"})

	affected, err := users.Query(newFakeDB(t, driver)).
		WhereIn("id", []interface{}{1, 2}).
		UpdateColumns(map[string]interface{}{"visits": ValueOf(3), "block": 0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, "UPDATE users SET block = ?, visits = ? WHERE id IN (?, ?)", driver.lastStatement())
	assert.Equal(t, []interface{}{0, int64(3), 1, 2}, driver.vars[0])
}

func TestWithParsesEagerLoads(t *testing.T) {
	users := MustDefine(Definition{Name: "User", With: []string{"profile"}})
	db := newFakeDB(t, &fakeDriver{})

	q := users.Query(db).With("sentMessages:message_id,subject", "receivedMessages.sender")
	assert.Equal(t, []string{"profile", "sentMessages", "receivedMessages", "receivedMessages.sender"}, q.EagerLoads())

	q.Without("receivedMessages", "profile")
	assert.Equal(t, []string{"sentMessages"}, q.EagerLoads())

	name, columns := parseEagerLoad("sentMessages: message_id, subject")
	assert.Equal(t, "sentMessages", name)
	assert.Equal(t, []string{"message_id", "subject"}, columns)
}

type ctxKey struct{}

type traceRecorder struct {
	logger.Interface
	events []logger.Event
	values []interface{}
}

func (r *traceRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	r.events = append(r.events, logger.NewEvent(ctx, logger.Info, 0, begin, fc, err))
	r.values = append(r.values, ctx.Value(ctxKey{}))
}

func TestStatementsAreTraced(t *testing.T) {
	recorder := &traceRecorder{Interface: logger.Discard}
	driver := &fakeDriver{rows: []map[string]interface{}{{"id": 1}}, count: 1}
	db := newFakeDB(t, driver, WithLogger(recorder))
	users := MustDefine(Definition{Name: "User"})

	ctx := context.WithValue(context.Background(), ctxKey{}, "request-1")
	_, err := users.Query(db.WithContext(ctx)).Get()
	require.NoError(t, err)

	require.Len(t, recorder.events, 1)
	e := recorder.events[0]
	assert.Equal(t, logger.Executed, e.Severity)
	assert.Equal(t, "select", e.Statement)
	assert.Equal(t, "fake", e.Driver)
	assert.Equal(t, "SELECT * FROM users", e.SQL)
	assert.Equal(t, int64(1), e.Rows)
	assert.Equal(t, "request-1", recorder.values[0])

	driver.err = errors.New("gone away")
	_, err = users.Query(db).Count()
	assert.Error(t, err)
	assert.Equal(t, logger.Failed, recorder.events[1].Severity)
	assert.Nil(t, recorder.values[1])
}
