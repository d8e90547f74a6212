package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"gorm.io/gorm"

	gifdb "ytgify.com/cmd/gif/dal/db"
	hashtagdb "ytgify.com/cmd/hashtag/dal/db"
	"ytgify.com/cmd/interaction/dal/db"
	"ytgify.com/cmd/interaction/infras/redis"
	"ytgify.com/pkg/testutil"
)

func setup(t *testing.T) (context.Context, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	conn := testutil.NewDB(t)
	db.DB, gifdb.DB, hashtagdb.DB = conn, conn, conn
	mr, rdb := testutil.NewRedis(t)
	redis.Use(rdb)
	return context.Background(), conn, mr
}
