package database

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"support_chat_backend/internal/config"
	"support_chat_backend/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_SQLiteMemory(t *testing.T) {
	db, err := InitDB(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, false, true)
	require.NoError(t, err)

	for _, table := range []string{"conversations", "messages", "knowledge_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, nil)
	assert.Error(t, err)
}

func TestSeedKnowledge(t *testing.T) {
	db, err := InitDB(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, false, true)
	require.NoError(t, err)

	n, err := SeedKnowledge(context.Background(), db, filepath.Join("..", "..", "configs", "knowledge.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	n, err = SeedKnowledge(context.Background(), db, filepath.Join("..", "..", "configs", "knowledge.yaml"))
	require.NoError(t, err)
	assert.Zero(t, n, "populated table is left untouched")

	var shipping int64
	db.Model(&model.KnowledgeItem{}).Where("category = ?", "shipping").Count(&shipping)
	assert.EqualValues(t, 4, shipping)
}

func TestLoadKnowledgeSeed_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - category: shipping\n    question: q\n"), 0644))

	_, err := LoadKnowledgeSeed(path)
	assert.Error(t, err)

	_, err = LoadKnowledgeSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInitRedis(t *testing.T) {
	rdb, err := InitRedis(&config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	rdb, err = InitRedis(&config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	defer rdb.Close()
	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
}
