// Package testutil opens throwaway stores for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ytgify.com/cmd/model"
)

var seq atomic.Int64

// NewDB opens a migrated in-memory sqlite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ytgify_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, model.AutoMigrate(db))
	return db
}

// NewRedis starts a miniredis server and returns a client for it.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func CreateUser(t testing.TB, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:       username,
		Email:          username + "@example.com",
		PasswordDigest: "x",
		DisplayName:    username,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateGif inserts a public gif owned by userID and bumps the owner's counter.
func CreateGif(t testing.TB, db *gorm.DB, userID int64, title string, opts ...func(*model.Gif)) *model.Gif {
	t.Helper()
	g := &model.Gif{
		UserID:  userID,
		Title:   title,
		Privacy: "public",
		FileURL: "memory://" + title,
	}
	for _, o := range opts {
		o(g)
	}
	require.NoError(t, db.Create(g).Error)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", userID).
		UpdateColumn("gifs_count", gorm.Expr("gifs_count + 1")).Error)
	return g
}

func Private(g *model.Gif) { g.Privacy = "private" }

func Unlisted(g *model.Gif) { g.Privacy = "unlisted" }

func CreatedAt(ts time.Time) func(*model.Gif) {
	return func(g *model.Gif) { g.CreatedAt = ts.UTC() }
}
