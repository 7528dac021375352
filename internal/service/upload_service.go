package service

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linkmall/internal/config"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

// 上传场景决定文件落盘的子目录，未知场景归入 common。
var uploadScenes = map[string]struct{}{
	"product":  {},
	"category": {},
	"seller":   {},
	"partner":  {},
	"common":   {},
}

const sniffLen = 512

// UploadService 图片与附件上传
type UploadService struct {
	cfg *config.Config
}

// NewUploadService 创建上传服务
func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{cfg: cfg}
}

// SaveFile 校验并保存上传文件，返回站内相对路径。
// 校验顺序：大小、扩展名、嗅探 MIME、图片尺寸。
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (string, error) {
	limits := s.cfg.Upload
	if file.Size > limits.MaxSize {
		return "", fmt.Errorf("文件大小超过限制（最大 %d MB）", limits.MaxSize/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(limits.AllowedExtensions) > 0 && !extensionAllowed(ext, limits.AllowedExtensions) {
		return "", fmt.Errorf("文件扩展名不被允许: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	contentType, err := sniffContentType(src)
	if err != nil {
		return "", err
	}
	if len(limits.AllowedTypes) > 0 && !contentTypeAllowed(contentType, limits.AllowedTypes) {
		return "", fmt.Errorf("文件类型不被允许: %s", contentType)
	}

	if strings.HasPrefix(contentType, "image/") {
		if err := s.checkImageBounds(src, contentType); err != nil {
			return "", err
		}
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return s.write(src, ext, scene)
}

func (s *UploadService) checkImageBounds(src io.ReadSeeker, contentType string) error {
	width, height, err := imageDimensions(src, contentType)
	if err != nil {
		return err
	}
	limits := s.cfg.Upload
	if limits.MaxWidth > 0 && width > limits.MaxWidth {
		return fmt.Errorf("图片宽度超过限制（最大 %d）", limits.MaxWidth)
	}
	if limits.MaxHeight > 0 && height > limits.MaxHeight {
		return fmt.Errorf("图片高度超过限制（最大 %d）", limits.MaxHeight)
	}
	return nil
}

// write 按 场景/年/月/uuid 落盘，文件名不保留用户输入。
func (s *UploadService) write(src io.Reader, ext, scene string) (string, error) {
	dir := resolveUploadScene(scene)
	now := time.Now()
	year, month := now.Format("2006"), now.Format("01")
	filename := uuid.New().String() + ext

	savePath := filepath.Join("uploads", dir, year, month, filename)
	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return "", err
	}
	dst, err := os.Create(savePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	// 相对路径，完整 URL 由前端按部署环境拼接
	return fmt.Sprintf("/uploads/%s/%s/%s/%s", dir, year, month, filename), nil
}

func sniffContentType(src io.ReadSeeker) (string, error) {
	head := make([]byte, sniffLen)
	if _, err := src.Read(head); err != nil && err != io.EOF {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head), nil
}

func resolveUploadScene(raw string) string {
	scene := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := uploadScenes[scene]; ok {
		return scene
	}
	return "common"
}

func extensionAllowed(ext string, allowed []string) bool {
	if ext == "" {
		return false
	}
	for _, entry := range allowed {
		candidate := strings.ToLower(strings.TrimSpace(entry))
		if candidate == "" {
			continue
		}
		if !strings.HasPrefix(candidate, ".") {
			candidate = "." + candidate
		}
		if candidate == ext {
			return true
		}
	}
	return false
}

func contentTypeAllowed(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.EqualFold(contentType, t) {
			return true
		}
	}
	return false
}

func imageDimensions(src io.ReadSeeker, contentType string) (int, int, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}
	// 标准库 image 不含 webp 解码器，单独解析其头部
	if strings.EqualFold(contentType, "image/webp") {
		width, height, err := webpDimensions(src)
		if err != nil {
			return 0, 0, fmt.Errorf("无法解析 WebP 图片: %w", err)
		}
		return width, height, nil
	}
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return 0, 0, fmt.Errorf("无法解析图片: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// webpDimensions 遍历 RIFF chunk，直到遇到首个已知编码块。
func webpDimensions(src io.Reader) (int, int, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(src, header); err != nil {
		return 0, 0, err
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WEBP" {
		return 0, 0, fmt.Errorf("无效的 WebP 文件头")
	}

	chunkHeader := make([]byte, 8)
	for {
		if _, err := io.ReadFull(src, chunkHeader); err != nil {
			return 0, 0, err
		}
		chunkType := string(chunkHeader[0:4])
		chunkSize := int(binary.LittleEndian.Uint32(chunkHeader[4:8]))
		if chunkSize < 0 {
			return 0, 0, fmt.Errorf("无效的 WebP chunk")
		}

		data := make([]byte, chunkSize)
		if _, err := io.ReadFull(src, data); err != nil {
			return 0, 0, err
		}

		if decode, known := webpChunkDecoders[chunkType]; known {
			return decode(data)
		}

		// chunk 按偶数字节对齐
		if chunkSize%2 == 1 {
			if _, err := io.CopyN(io.Discard, src, 1); err != nil {
				return 0, 0, err
			}
		}
	}
}

// webpChunkDecoders 按编码类型解析宽高，VP8/VP8L/VP8X 三种。
var webpChunkDecoders = map[string]func([]byte) (int, int, error){
	"VP8X": func(data []byte) (int, int, error) {
		if len(data) < 10 {
			return 0, 0, fmt.Errorf("VP8X chunk 长度不足")
		}
		width := (int(data[4]) | int(data[5])<<8 | int(data[6])<<16) + 1
		height := (int(data[7]) | int(data[8])<<8 | int(data[9])<<16) + 1
		return width, height, nil
	},
	"VP8 ": func(data []byte) (int, int, error) {
		if len(data) < 10 {
			return 0, 0, fmt.Errorf("VP8 chunk 长度不足")
		}
		width := int(binary.LittleEndian.Uint16(data[6:8]) & 0x3FFF)
		height := int(binary.LittleEndian.Uint16(data[8:10]) & 0x3FFF)
		return width, height, nil
	},
	"VP8L": func(data []byte) (int, int, error) {
		if len(data) < 5 {
			return 0, 0, fmt.Errorf("VP8L chunk 长度不足")
		}
		if data[0] != 0x2f {
			return 0, 0, fmt.Errorf("VP8L 签名无效")
		}
		bits := binary.LittleEndian.Uint32(data[1:5])
		return int(bits&0x3FFF) + 1, int((bits>>14)&0x3FFF) + 1, nil
	},
}
