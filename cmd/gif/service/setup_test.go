package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ytgify.com/cmd/gif/dal/db"
	gifredis "ytgify.com/cmd/gif/infras/redis"
	hashtagdb "ytgify.com/cmd/hashtag/dal/db"
	interactiondb "ytgify.com/cmd/interaction/dal/db"
	interactionredis "ytgify.com/cmd/interaction/infras/redis"
	relationdb "ytgify.com/cmd/relation/dal/db"
	"ytgify.com/pkg/oss"
	"ytgify.com/pkg/testutil"
)

type env struct {
	ctx   context.Context
	conn  *gorm.DB
	mr    *miniredis.Miniredis
	store *oss.MemoryStorage
}

func setup(t *testing.T) *env {
	t.Helper()
	conn := testutil.NewDB(t)
	db.DB, hashtagdb.DB, interactiondb.DB, relationdb.DB = conn, conn, conn, conn
	mr, rdb := testutil.NewRedis(t)
	gifredis.Use(rdb)
	interactionredis.Use(rdb)
	store := oss.NewMemoryStorage()
	oss.Store = store
	return &env{ctx: context.Background(), conn: conn, mr: mr, store: store}
}

// tinyGif 两帧 4x2 的 gif, 每帧 0.1 秒
func tinyGif(t *testing.T) []byte {
	t.Helper()
	frame := image.NewPaletted(image.Rect(0, 0, 4, 2), color.Palette{color.Black, color.White})
	frame.SetColorIndex(1, 1, 1)
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{
		Image: []*image.Paletted{frame, frame},
		Delay: []int{10, 10},
	}))
	return buf.Bytes()
}

func upload(t *testing.T) *Upload {
	return &Upload{Filename: "clip.gif", ContentType: "image/gif", Data: tinyGif(t)}
}
