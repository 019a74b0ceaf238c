package dialects_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-entity/entity/dialects"
)

func newMock(t *testing.T, config dialects.Config) (*dialects.Dialect, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return dialects.New(db, config), mock
}

func TestQuoteName(t *testing.T) {
	d := dialects.New(nil, dialects.Config{QuoteChar: '`'})

	assert.Equal(t, "`users`", d.QuoteName("users"))
	assert.Equal(t, "`users`.`id`", d.QuoteName("users.id"))
	assert.Equal(t, "`users`.*", d.QuoteName("users.*"))
	assert.Equal(t, "`we``ird`", d.QuoteName("we`ird"))
}

func TestQuote(t *testing.T) {
	d := dialects.New(nil, dialects.Config{})

	assert.Equal(t, "'it''s'", d.Quote("it's"))
	assert.Equal(t, "42", d.Quote(42))
	assert.Equal(t, "NULL", d.Quote(nil))
}

func TestExecuteInsertRecordsLastInsertID(t *testing.T) {
	d, mock := newMock(t, dialects.Config{Name: "mock", QuoteChar: '`'})

	mock.ExpectExec("INSERT INTO `users` (`name`) VALUES (?)").
		WithArgs("jinzhu").
		WillReturnResult(sqlmock.NewResult(101, 1))

	qb := d.NewQueryBuilder().Insert("users").Columns("name").Values("jinzhu").Returning("id")
	affected, err := d.Execute(context.Background(), qb)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	id, err := d.LastInsertID()
	require.NoError(t, err)
	assert.EqualValues(t, 101, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteInsertReturning(t *testing.T) {
	d, mock := newMock(t, dialects.Config{Name: "mock", QuoteChar: '"', Returning: true})

	mock.ExpectQuery(`INSERT INTO "users" ("name") VALUES (?) RETURNING "id"`).
		WithArgs("jinzhu").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	qb := d.NewQueryBuilder().Insert("users").Columns("name").Values("jinzhu").Returning("id")
	_, err := d.Execute(context.Background(), qb)
	require.NoError(t, err)

	id, _ := d.LastInsertID()
	assert.EqualValues(t, 7, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteUpdate(t *testing.T) {
	d, mock := newMock(t, dialects.Config{Name: "mock"})

	mock.ExpectExec("UPDATE users SET name = ? WHERE id = ?").
		WithArgs("x", 1).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := d.Execute(context.Background(), d.NewQueryBuilder().Update("users").Set("name", "x").Where("id = ?", 1))
	require.NoError(t, err)
	assert.EqualValues(t, 3, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteError(t *testing.T) {
	d, mock := newMock(t, dialects.Config{Name: "mock"})

	mock.ExpectExec("DELETE FROM users").WillReturnError(assert.AnError)

	_, err := d.Execute(context.Background(), d.NewQueryBuilder().Delete("users"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "mock: exec")
}

func TestLoadRowList(t *testing.T) {
	d, mock := newMock(t, dialects.Config{Name: "mock"})

	mock.ExpectQuery("SELECT * FROM users WHERE id IN (?, ?)").
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, []byte("jinzhu")).
			AddRow(2, nil))

	rows, err := d.LoadRowList(context.Background(), d.NewQueryBuilder().From("users").WhereIn("id", []interface{}{1, 2}))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "jinzhu", rows[0]["name"])
	assert.Nil(t, rows[1]["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRowEmpty(t *testing.T) {
	d, mock := newMock(t, dialects.Config{Name: "mock"})

	mock.ExpectQuery("SELECT * FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	row, err := d.LoadRow(context.Background(), d.NewQueryBuilder().From("users"))
	require.NoError(t, err)
	assert.Nil(t, row)
}
