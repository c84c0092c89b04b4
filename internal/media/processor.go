package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os/exec"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp"
)

const (
	DefaultAvatarDimension = 256
	defaultJPEGQuality     = 3
	defaultPNGLevel        = 4
	defaultWebPQuality     = 85
)

var ErrNotImage = errors.New("media: content is not a supported image")

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Resized     bool
}

// Info describes an image whose header decoded successfully.
type Info struct {
	Format      string
	ContentType string
	Width       int
	Height      int
}

// Processor turns an uploaded image into a square avatar of the given edge length.
type Processor interface {
	Process(ctx context.Context, upload Upload, dimension int) (*Result, error)
}

// Inspect decodes the image header in data. Formats: png, jpeg, gif, webp.
func Inspect(data []byte) (*Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrNotImage, cfg.Width, cfg.Height)
	}
	return &Info{
		Format:      format,
		ContentType: "image/" + format,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// Extension returns the file extension for a content type produced by Inspect.
func Extension(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

type FFMPEGProcessor struct {
	path        string
	dimension   int
	jpegQuality int
	pngLevel    int
	webpQuality int
}

func NewFFMPEGProcessor(binaryPath string, dimension int) *FFMPEGProcessor {
	path := strings.TrimSpace(binaryPath)
	if path == "" {
		path = "ffmpeg"
	}
	if dimension <= 0 {
		dimension = DefaultAvatarDimension
	}
	return &FFMPEGProcessor{
		path:        path,
		dimension:   dimension,
		jpegQuality: defaultJPEGQuality,
		pngLevel:    defaultPNGLevel,
		webpQuality: defaultWebPQuality,
	}
}

func (p *FFMPEGProcessor) Process(ctx context.Context, upload Upload, dimension int) (*Result, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("media: empty reader")
	}
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty image data")
	}

	info, err := Inspect(data)
	if err != nil {
		return nil, err
	}
	target := dimension
	if target <= 0 {
		target = p.dimension
	}
	if info.Width == target && info.Height == target {
		return &Result{Bytes: data, ContentType: info.ContentType}, nil
	}

	// gif avatars are flattened to their first frame as png.
	contentType := info.ContentType
	if contentType == "image/gif" {
		contentType = "image/png"
	}
	processed, err := p.transcode(ctx, data, contentType, target)
	if err != nil {
		return nil, err
	}
	return &Result{
		Bytes:       processed,
		ContentType: contentType,
		Resized:     true,
	}, nil
}

// squareFilter scales the short edge to size and center-crops the long one.
func squareFilter(size int) string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase:flags=lanczos,crop=%d:%d", size, size, size, size)
}

func (p *FFMPEGProcessor) transcode(ctx context.Context, data []byte, contentType string, size int) ([]byte, error) {
	codec, args, err := p.codecArgs(contentType)
	if err != nil {
		return nil, err
	}

	cmdArgs := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-vf", squareFilter(size),
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", codec,
	}
	cmdArgs = append(cmdArgs, args...)
	cmdArgs = append(cmdArgs, "pipe:1")

	cmd := exec.CommandContext(ctx, p.path, cmdArgs...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return nil, fmt.Errorf("ffmpeg: %v: %s", err, errMsg)
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}

	result := stdout.Bytes()
	if len(result) == 0 {
		return nil, fmt.Errorf("ffmpeg: produced empty output")
	}
	return result, nil
}

func (p *FFMPEGProcessor) codecArgs(contentType string) (string, []string, error) {
	switch contentType {
	case "image/jpeg":
		return "mjpeg", []string{"-q:v", strconv.Itoa(p.jpegQuality)}, nil
	case "image/png":
		return "png", []string{"-compression_level", strconv.Itoa(p.pngLevel)}, nil
	case "image/webp":
		return "libwebp", []string{"-quality", strconv.Itoa(p.webpQuality)}, nil
	default:
		return "", nil, fmt.Errorf("media: unsupported content type %s", contentType)
	}
}
