package encoder

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg pipes raw RGBA frames into an ffmpeg process that writes MJPEG/AVI.
type FFmpeg struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	path   string
	width  int
	height int
	row    []byte
	logger *slog.Logger
	frames int
	closed bool
}

func ffmpegArgs(path string, fps float64, width, height int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.FormatFloat(fps, 'f', 3, 64),
		"-i", "-",
		"-an",
		"-c:v", "mjpeg",
		"-q:v", "3",
		"-y", path,
	}
}

// OpenFFmpeg starts ffmpegPath writing to path.
func OpenFFmpeg(ffmpegPath, path string, fps float64, width, height int, logger *slog.Logger) (*FFmpeg, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if fps <= 0 {
		fps = 1
	}
	bin, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	cmd := exec.Command(bin, ffmpegArgs(path, fps, width, height)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	if logger != nil {
		logger.Debug("ffmpeg encoder started", "file", path, "pid", cmd.Process.Pid, "fps", fps)
	}
	return &FFmpeg{
		cmd:    cmd,
		stdin:  stdin,
		stderr: &stderr,
		path:   path,
		width:  width,
		height: height,
		row:    make([]byte, width*4),
		logger: logger,
	}, nil
}

// WriteFrame writes one frame of width*height RGBA pixels to ffmpeg.
func (f *FFmpeg) WriteFrame(img *image.RGBA) error {
	if f.closed {
		return fmt.Errorf("ffmpeg encoder closed")
	}
	if img == nil {
		return fmt.Errorf("nil frame")
	}
	b := img.Bounds()
	if b.Dx() < f.width || b.Dy() < f.height {
		return fmt.Errorf("frame %v smaller than %dx%d", b, f.width, f.height)
	}
	n := f.width * 4
	for y := 0; y < f.height; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(f.row, img.Pix[off:off+n])
		if _, err := f.stdin.Write(f.row); err != nil {
			return fmt.Errorf("write to ffmpeg: %w", err)
		}
	}
	f.frames++
	return nil
}

// Close ends the input stream and waits for ffmpeg to finish the file.
func (f *FFmpeg) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	_ = f.stdin.Close()
	err := f.cmd.Wait()
	if f.logger != nil {
		f.logger.Debug("ffmpeg encoder exited", "file", f.path, "frames", f.frames, "error", err)
	}
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(f.stderr.String()))
	}
	return nil
}
