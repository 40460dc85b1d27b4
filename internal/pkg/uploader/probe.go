package uploader

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration 通过 ffprobe 提取视频时长（秒）
// 上传的文件先落到临时文件再探测
func ProbeDuration(file *multipart.FileHeader) (float64, error) {
	src, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "vidtube-probe-*"+filepath.Ext(file.Filename))
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	out, err := ffmpeg.Probe(tmp.Name())
	if err != nil {
		return 0, err
	}

	var pf probeFormat
	if err := json.Unmarshal([]byte(out), &pf); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(pf.Format.Duration, 64)
}
