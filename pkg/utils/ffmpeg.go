package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// MediaInfo 上传文件的基本参数
type MediaInfo struct {
	Width    int
	Height   int
	FPS      int
	Duration float64
}

func (m MediaInfo) Resolution() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	return strconv.Itoa(m.Width) + "x" + strconv.Itoa(m.Height)
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// InspectMedia 调用 ffprobe 读取文件参数
func InspectMedia(path string) (MediaInfo, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return MediaInfo{}, errors.WithMessage(err, "Failed to inspect the file")
	}
	return ParseMediaInfo([]byte(out))
}

// ParseMediaInfo 解析 ffprobe 的 json 输出, 取第一个视频流
func ParseMediaInfo(data []byte) (MediaInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return MediaInfo{}, errors.WithMessage(err, "Failed to decode ffprobe output")
	}
	var info MediaInfo
	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		info.Width = s.Width
		info.Height = s.Height
		info.FPS = parseFrameRate(s.AvgFrameRate)
		if info.FPS == 0 {
			info.FPS = parseFrameRate(s.RFrameRate)
		}
		info.Duration, _ = strconv.ParseFloat(s.Duration, 64)
		break
	}
	if info.Duration == 0 {
		info.Duration, _ = strconv.ParseFloat(out.Format.Duration, 64)
	}
	if info.Width == 0 || info.Height == 0 {
		return info, errors.New("no video stream found")
	}
	return info, nil
}

func parseFrameRate(rate string) int {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		f, _ := strconv.ParseFloat(rate, 64)
		return int(f + 0.5)
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return int(n/d + 0.5)
}

// GetGifThumbnail 截取第一帧作为封面
func GetGifThumbnail(gifPath, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return "", errors.WithMessage(err, "Failed to create folders")
	}
	base := strings.TrimSuffix(filepath.Base(gifPath), filepath.Ext(gifPath))
	outputPath := filepath.Join(outputDir, base+"_thumbnail.jpg")
	err := ffmpeg.Input(gifPath).
		Output(outputPath, ffmpeg.KwArgs{
			"ss":      "00:00:00",
			"vframes": "1",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", errors.WithMessage(err, "Failed to generate the thumbnail")
	}
	return outputPath, nil
}
