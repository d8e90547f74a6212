package service

import (
	"bytes"
	"context"
	"image/gif"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"

	"ytgify.com/config"
	"ytgify.com/pkg/utils"
)

// media 上传文件探测结果和封面
type media struct {
	info      utils.MediaInfo
	thumbnail []byte
}

// inspect 优先用 ffprobe/ffmpeg 读取参数和截取封面, 本机没有 ffmpeg 时直接解码 gif
func inspect(ctx context.Context, data []byte, name string) (*media, error) {
	dir, err := os.MkdirTemp(config.ConfigInfo.Upload.TmpDir, "ytgify-upload-")
	if err != nil {
		return nil, errors.WithMessage(err, "create tmp dir")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name+".gif")
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return nil, errors.WithMessage(err, "write tmp file")
	}

	m := &media{}
	if m.info, err = utils.InspectMedia(path); err != nil {
		hlog.CtxDebugf(ctx, "ffprobe unavailable, decoding gif directly: %v", err)
		if m.info, err = decodeInfo(data); err != nil {
			return nil, err
		}
	}
	if thumb, err := utils.GetGifThumbnail(path, dir); err == nil {
		m.thumbnail, err = os.ReadFile(thumb)
		if err != nil {
			return nil, errors.WithMessage(err, "read thumbnail")
		}
	} else {
		hlog.CtxDebugf(ctx, "ffmpeg thumbnail failed, encoding first frame: %v", err)
		if m.thumbnail, err = firstFrame(data); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func decodeInfo(data []byte) (utils.MediaInfo, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return utils.MediaInfo{}, errors.WithMessage(err, "decode gif")
	}
	info := utils.MediaInfo{Width: g.Config.Width, Height: g.Config.Height}
	var centis int
	for _, d := range g.Delay {
		centis += d
	}
	info.Duration = float64(centis) / 100
	if info.Duration > 0 {
		info.FPS = int(math.Round(float64(len(g.Image)) / info.Duration))
	}
	return info, nil
}

func firstFrame(data []byte) ([]byte, error) {
	img, err := gif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithMessage(err, "decode gif")
	}
	var buf bytes.Buffer
	if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, errors.WithMessage(err, "encode thumbnail")
	}
	return buf.Bytes(), nil
}
