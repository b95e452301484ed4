package main

import (
	"testing"

	"github.com/annel0/mmo-collision/internal/auth"
	"github.com/annel0/mmo-collision/internal/config"
	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/annel0/mmo-collision/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunClosesStoreOnStartupError(t *testing.T) {
	logging.SetLogDir(t.TempDir())

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Path = dir
	cfg.Map.Name = "startup"
	cfg.Map.Width, cfg.Map.Height = 16, 16
	cfg.Server.AuthSecret = "c2hvcnQ=" // 5 байт

	err := run(cfg)
	require.ErrorIs(t, err, auth.ErrWeakSecret)

	// badger держит блокировку каталога, пока хранилище открыто
	store, err := storage.NewMapStore(dir)
	require.NoError(t, err, "хранилище должно быть закрыто после ошибки запуска")
	defer store.Close()

	m, err := store.Load("startup")
	require.NoError(t, err, "сгенерированная карта сохранена до ошибки")
	assert.Equal(t, 16, m.Width)
}
