package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveInsertsThenUpdatesDirtyAttributes(t *testing.T) {
	driver := &fakeDriver{lastID: int64(7)}
	db := newFakeDB(t, driver)
	users := MustDefine(Definition{Name: "User"})

	user, err := users.New(db, map[string]interface{}{"name": "a", "email": "a@example.com"})
	require.NoError(t, err)
	assert.False(t, user.Exists())

	saved, err := user.Save()
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, user.Exists())
	assert.False(t, user.IsDirty())
	assert.Equal(t, []string{"INSERT INTO users (email, name) VALUES (?, ?)"}, driver.statements)
	assert.Equal(t, []interface{}{"a@example.com", "a"}, driver.vars[0])
	assert.Equal(t, int64(7), user.PrimaryKeyValue().Int())

	saved, err = user.Save()
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Len(t, driver.statements, 1, "clean models should not be written")

	require.NoError(t, user.Set("name", "b"))
	_, err = user.Save()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET name = ? WHERE id = ?", driver.lastStatement())
	assert.Equal(t, []interface{}{"b", int64(7)}, driver.vars[1])

	deleted, err := user.Delete()
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, user.Exists())
	assert.Equal(t, "DELETE FROM users WHERE id = ?", driver.lastStatement())
}

func TestSaveKeepsPrimaryKeyWithoutInsertID(t *testing.T) {
	driver := &fakeDriver{lastID: int64(0)}
	users := MustDefine(Definition{Name: "User"})

	user, err := users.New(newFakeDB(t, driver), map[string]interface{}{"id": 5, "name": "a"})
	require.NoError(t, err)
	_, err = user.Save()
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.PrimaryKeyValue().Int())
}

func TestSaveError(t *testing.T) {
	driver := &fakeDriver{err: errors.New("disk full")}
	users := MustDefine(Definition{Name: "User"})

	user, err := users.New(newFakeDB(t, driver), map[string]interface{}{"name": "a"})
	require.NoError(t, err)

	saved, err := user.Save()
	assert.EqualError(t, err, "disk full")
	assert.False(t, saved)
	assert.False(t, user.Exists())
	assert.True(t, user.IsDirty())
}

func TestTimestamps(t *testing.T) {
	var (
		driver = &fakeDriver{lastID: int64(1)}
		clock  = testNow
		db     = newFakeDB(t, driver, WithNowFunc(func() time.Time {
			clock = clock.Add(time.Hour)
			return clock
		}))
		posts = MustDefine(Definition{Name: "Post", Timestamps: true})
	)

	post, err := posts.New(db, map[string]interface{}{"title": "a"})
	require.NoError(t, err)
	_, err = post.Save()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO posts (created_at, title, updated_at) VALUES (?, ?, ?)", driver.lastStatement())
	assert.Equal(t, []interface{}{"2020-02-03 05:05:06", "a", "2020-02-03 05:05:06"}, driver.vars[0])

	require.NoError(t, post.Set("title", "b"))
	_, err = post.Save()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE posts SET title = ?, updated_at = ? WHERE id = ?", driver.lastStatement())
	assert.Equal(t, []interface{}{"b", "2020-02-03 06:05:06", int64(1)}, driver.vars[1])

	touched, err := post.Touch()
	require.NoError(t, err)
	assert.True(t, touched)
	assert.Equal(t, "UPDATE posts SET updated_at = ? WHERE id = ?", driver.lastStatement())

	createdAt, err := post.Get("created_at")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 2, 3, 5, 5, 6, 0, time.Local), createdAt.Time())

	plain, err := MustDefine(Definition{Name: "User"}).New(db, nil)
	require.NoError(t, err)
	touched, err = plain.Touch()
	require.NoError(t, err)
	assert.False(t, touched)
}

func TestTimestampsKeepManualValues(t *testing.T) {
	driver := &fakeDriver{lastID: int64(1)}
	posts := MustDefine(Definition{Name: "Post", Timestamps: true})

	post, err := posts.New(newFakeDB(t, driver), map[string]interface{}{"created_at": "2001-01-01 00:00:00"})
	require.NoError(t, err)
	_, err = post.Save()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"2001-01-01 00:00:00", "2020-02-03 04:05:06"}, driver.vars[0])
}

func TestUUIDPrimaryKey(t *testing.T) {
	driver := &fakeDriver{}
	tokens := MustDefine(Definition{Name: "Token", NotIncrementing: true, KeyType: CastUUID})

	token, err := tokens.New(newFakeDB(t, driver), map[string]interface{}{"name": "api"})
	require.NoError(t, err)
	_, err = token.Save()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO tokens (id, name) VALUES (?, ?)", driver.lastStatement())
	id, ok := token.GetRaw("id")
	require.True(t, ok)
	_, err = uuid.Parse(id.String())
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	driver := &fakeDriver{}
	db := newFakeDB(t, driver)
	users := MustDefine(Definition{Name: "User"})

	user, err := users.New(db, nil)
	require.NoError(t, err)
	deleted, err := user.Delete()
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, driver.statements)

	deleted, err = user.Delete(5)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, "DELETE FROM users WHERE id = ?", driver.lastStatement())
	assert.Equal(t, []interface{}{int64(5)}, driver.vars[0])

	keyless := users.Query(db).Hydrate([]map[string]interface{}{{"name": "a"}})[0]
	_, err = keyless.Delete()
	assert.ErrorIs(t, err, ErrPrimaryKeyRequired)

	require.NoError(t, keyless.Set("name", "b"))
	_, err = keyless.Save()
	assert.ErrorIs(t, err, ErrPrimaryKeyRequired)
}

func TestIncrementAndDecrement(t *testing.T) {
	driver := &fakeDriver{}
	db := newFakeDB(t, driver)
	users := MustDefine(Definition{Name: "User"})
	user := users.Query(db).Hydrate([]map[string]interface{}{{"id": 1, "visits": "2", "score": 1.5}})[0]

	ok, err := user.Increment("visits", 3, true)
	require.NoError(t, err)
	assert.True(t, ok)
	visits, err := user.Get("visits")
	require.NoError(t, err)
	assert.Equal(t, int64(5), visits.Interface())
	assert.Empty(t, driver.statements, "lazy increments should not save")

	_, err = user.Decrement("visits", 1, false)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET visits = ? WHERE id = ?", driver.lastStatement())
	assert.Equal(t, []interface{}{int64(4), int64(1)}, driver.vars[0])

	_, err = user.Increment("score", 1, true)
	require.NoError(t, err)
	score, _ := user.Get("score")
	assert.Equal(t, 2.5, score.Interface())
}

func TestIs(t *testing.T) {
	db := newFakeDB(t, &fakeDriver{})
	other := newFakeDB(t, &fakeDriver{})
	users := MustDefine(Definition{Name: "User"})
	posts := MustDefine(Definition{Name: "Post"})

	a := users.Query(db).Hydrate([]map[string]interface{}{{"id": 1}})[0]
	b := users.Query(db).Hydrate([]map[string]interface{}{{"id": "1"}})[0]
	c := users.Query(other).Hydrate([]map[string]interface{}{{"id": 1}})[0]
	d := posts.Query(db).Hydrate([]map[string]interface{}{{"id": 1}})[0]
	e, _ := users.New(db, nil)

	assert.True(t, a.Is(b))
	assert.False(t, a.Is(c), "models of different connections")
	assert.False(t, a.Is(d), "models of different tables")
	assert.False(t, a.Is(nil))
	assert.False(t, e.Is(e), "models without key")
	assert.Equal(t, "users.id", a.QualifiedPrimaryKey())
	assert.Equal(t, "User(id=1)", a.String())
}

func TestSetAndGet(t *testing.T) {
	db := newFakeDB(t, &fakeDriver{})
	messages := MustDefine(Definition{Name: "Message"})
	users := MustDefine(Definition{
		Name:    "User",
		Columns: []string{"id", "name", "params"},
		Casts:   map[string]string{"params": "array"},
		Dates:   []string{"registerDate"},
		Hidden:  []string{"password"},
		Setters: map[string]SetMutator{
			"name": func(m *Model, value Value) error {
				m.SetRaw("name", value.String()+"!")
				return nil
			},
		},
	})
	users.HasMany("messages", messages, "", "")

	_, err := users.New(db, map[string]interface{}{"nope": 1})
	assert.ErrorIs(t, err, ErrAttributeNotFound)

	user, err := users.New(db, map[string]interface{}{"name": "a", "params": map[string]interface{}{"a": 1}})
	require.NoError(t, err)

	name, err := user.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "a!", name.Interface())

	raw, _ := user.GetRaw("params")
	assert.Equal(t, `{"a":1}`, raw.Interface())

	_, err = user.Get("messages")
	assert.ErrorIs(t, err, ErrRelationNotLoaded)

	_, err = user.Get("nope")
	assert.ErrorIs(t, err, ErrAttributeNotFound)

	registered, err := user.Get("registerDate")
	require.NoError(t, err)
	assert.True(t, registered.IsNull())

	require.NoError(t, user.Set("registerDate", time.Date(2010, 2, 13, 0, 34, 42, 0, time.Local)))
	raw, _ = user.GetRaw("registerDate")
	assert.Equal(t, "2010-02-13 00:34:42", raw.Interface())

	loose, err := MustDefine(Definition{Name: "Tag"}).New(db, map[string]interface{}{"anything": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"anything"}, loose.Store().Keys())
}

func TestSetJSONPath(t *testing.T) {
	db := newFakeDB(t, &fakeDriver{})
	users := MustDefine(Definition{Name: "User", Casts: map[string]string{"params": "array"}})

	user, err := users.New(db, map[string]interface{}{"params": `{"a":1}`})
	require.NoError(t, err)

	require.NoError(t, user.Set("params->address->city", "Paris"))
	params, err := user.Get("params")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"a":       float64(1),
		"address": map[string]interface{}{"city": "Paris"},
	}, params.Interface())

	var encodingErr *JSONEncodingError
	err = user.Set("params->owner", user)
	require.ErrorAs(t, err, &encodingErr)
	assert.Equal(t, "params", encodingErr.Attribute)
}

func TestToJSONRejectsMalformedUTF8(t *testing.T) {
	db := newFakeDB(t, &fakeDriver{})
	users := MustDefine(Definition{Name: "User"})
	posts := MustDefine(Definition{Name: "Post"})

	user := users.Query(db).Hydrate([]map[string]interface{}{{"id": 1, "name": "bad\xffname"}})[0]
	_, err := user.ToJSON()
	var encodingErr *JSONEncodingError
	require.True(t, errors.As(err, &encodingErr))
	assert.Equal(t, "User", encodingErr.Model)
	assert.Equal(t, "name", encodingErr.Attribute)
	assert.ErrorIs(t, err, ErrMalformedUTF8)

	_, err = NewCollection(user).ToJSON()
	require.True(t, errors.As(err, &encodingErr))
	assert.Equal(t, "name", encodingErr.Attribute)

	author := users.Query(db).Hydrate([]map[string]interface{}{{"id": 2, "name": "ok"}})[0]
	post := posts.Query(db).Hydrate([]map[string]interface{}{{"id": 5, "title": "caf\xe9"}})[0]
	author.SetRelation("posts", NewCollection(post))
	_, err = author.ToJSON()
	require.True(t, errors.As(err, &encodingErr))
	assert.Equal(t, "User", encodingErr.Model)
	assert.Equal(t, "posts.0.title", encodingErr.Attribute)

	author.UnsetRelation("posts")
	data, err := author.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"name":"ok"}`, data)
}

func TestAttributesAndToArray(t *testing.T) {
	db := newFakeDB(t, &fakeDriver{})
	users := MustDefine(Definition{
		Name:   "User",
		Casts:  map[string]string{"params": "array", "expires": "date:02/01/2006"},
		Dates:  []string{"registerDate", "lastResetTime"},
		Hidden: []string{"password"},
	})

	user := users.Query(db).Hydrate([]map[string]interface{}{{
		"id":            42,
		"password":      "secret",
		"params":        `{"test":"Object"}`,
		"expires":       "2020-02-03 00:00:00",
		"registerDate":  "2010-02-13 00:34:42",
		"lastResetTime": "0000-00-00 00:00:00",
	}})[0]

	attributes, err := user.Attributes()
	require.NoError(t, err)
	assert.Equal(t, "secret", attributes["password"])

	array, err := user.ToArray()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"id":            int64(42),
		"params":        map[string]interface{}{"test": "Object"},
		"expires":       "03/02/2020",
		"registerDate":  "2010-02-13 00:34:42",
		"lastResetTime": "0000-00-00 00:00:00",
	}, array)
}
