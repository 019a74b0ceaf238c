package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-entity/entity"
	"github.com/go-entity/entity/utils/tests"
)

func TestCollection(t *testing.T) {
	db := tests.OpenDB(t)

	users, err := tests.Users.Query(db).Without("sentMessages").Get()
	require.NoError(t, err)
	require.Equal(t, 5, users.Len())
	assert.Equal(t, []interface{}{int64(42), int64(43), int64(44), int64(45), int64(100)}, users.Keys())

	publisher, ok := users.Find(43)
	require.True(t, ok)
	name, _ := publisher.Get("username")
	assert.Equal(t, "publisher", name.Interface())

	admin, _, err := tests.Users.Query(db).Find(42)
	require.NoError(t, err)
	found, ok := users.Find(admin)
	require.True(t, ok)
	assert.True(t, found.Is(admin))

	assert.True(t, users.Contains("45"))
	assert.False(t, users.Contains(46))

	reset := users.Filter(func(m *entity.Model) bool {
		count, _ := m.Get("resetCount")
		return count.Int() > 0
	})
	assert.Equal(t, []interface{}{int64(100)}, reset.Keys())

	users.Sort(func(a, b *entity.Model) bool {
		return a.PrimaryKeyValue().Int() > b.PrimaryKeyValue().Int()
	})
	first, _, _ := users.First()
	assert.Equal(t, int64(100), first.PrimaryKeyValue().Int())

	assert.True(t, users.Replace(0, admin))
	assert.False(t, users.Replace(5, admin))
	_, ok = users.Get(5)
	assert.False(t, ok)

	var empty *entity.Collection
	assert.Equal(t, 0, empty.Len())
	assert.True(t, entity.NewCollection().IsEmpty())
}

func TestCollectionLoad(t *testing.T) {
	db := tests.OpenDB(t)

	users, err := tests.Users.Query(db).Without("sentMessages").Get()
	require.NoError(t, err)
	require.NoError(t, users.Load("profile", "receivedMessages"))

	admin, _ := users.Find(42)
	assert.True(t, admin.RelationLoaded("profile"))
	received, _ := admin.Get("receivedMessages")
	assert.Equal(t, 4, received.Collection().Len())

	editor, _ := users.Find(44)
	assert.False(t, editor.RelationLoaded("profile"))
	received, _ = editor.Get("receivedMessages")
	assert.Equal(t, 1, received.Collection().Len())

	author, _ := users.Find(45)
	received, err = author.Get("receivedMessages")
	require.NoError(t, err)
	assert.True(t, received.Collection().IsEmpty())

	assert.ErrorIs(t, users.Load("friends"), entity.ErrRelationNotFound)
	assert.NoError(t, entity.NewCollection().Load("friends"))
}
