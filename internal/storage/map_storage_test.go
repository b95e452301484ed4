package storage

import (
	"testing"

	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/mapgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *MapStore {
	t.Helper()
	store, err := NewMapStore(t.TempDir())
	require.NoError(t, err, "Не удалось создать хранилище")
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadMap(t *testing.T) {
	store := setupTestStore(t)
	m := mapgen.NewGenerator(21).Generate("demo", 32, 24)

	record, err := store.Save(m)
	require.NoError(t, err)
	assert.Equal(t, "demo", record.Name)
	assert.NotEmpty(t, record.Generation)
	assert.Positive(t, record.Size)

	loaded, err := store.Load("demo")
	require.NoError(t, err)
	assert.Equal(t, m.Game, loaded.Game, "игровой слой должен совпадать")
	assert.Equal(t, m.Front, loaded.Front)
	assert.Equal(t, m.Groups, loaded.Groups)
	assert.Equal(t, m.EnvPoints, loaded.EnvPoints)

	got, err := store.Record("demo")
	require.NoError(t, err)
	assert.Equal(t, record.Generation, got.Generation)
}

func TestResaveChangesGeneration(t *testing.T) {
	store := setupTestStore(t)
	m := mapdata.NewEmpty("gen", 4, 4)

	first, err := store.Save(m)
	require.NoError(t, err)
	second, err := store.Save(m)
	require.NoError(t, err)
	assert.NotEqual(t, first.Generation, second.Generation, "перезапись меняет поколение")
}

func TestLoadMissingMap(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Load("nope")
	assert.ErrorIs(t, err, ErrMapNotFound)
	_, err = store.Record("nope")
	assert.ErrorIs(t, err, ErrMapNotFound)
}

func TestListAndDelete(t *testing.T) {
	store := setupTestStore(t)
	for _, name := range []string{"b", "a", "c"} {
		_, err := store.Save(mapdata.NewEmpty(name, 2, 2))
		require.NoError(t, err)
	}

	records, err := store.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].Name, "список отсортирован по имени")

	require.NoError(t, store.Delete("b"))
	require.NoError(t, store.Delete("missing"), "удаление отсутствующей карты не ошибка")

	records, err = store.List()
	require.NoError(t, err)
	assert.Len(t, records, 2)
	_, err = store.Load("b")
	assert.ErrorIs(t, err, ErrMapNotFound)
}

func TestInMemoryStoreAndClose(t *testing.T) {
	store, err := NewMapStore("")
	require.NoError(t, err)

	_, err = store.Save(mapdata.NewEmpty("mem", 2, 2))
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "повторное закрытие безопасно")

	_, err = store.Load("mem")
	assert.Error(t, err, "закрытое хранилище не читается")

	_, err = store.Save(&mapdata.Map{})
	assert.Error(t, err)
}
