package lib

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// DefaultVideoEncoder is the encoder used when the source codec has no
// mapping or its mapped encoder refuses to start.
const DefaultVideoEncoder = "mpeg4"

var encoderByCodec = map[string]string{
	"h264":       "libx264",
	"hevc":       "libx265",
	"mpeg4":      "mpeg4",
	"mpeg2video": "mpeg2video",
	"mpeg1video": "mpeg1video",
	"mjpeg":      "mjpeg",
	"vp8":        "libvpx",
	"vp9":        "libvpx-vp9",
	"wmv1":       "wmv1",
	"wmv2":       "wmv2",
	"flv1":       "flv",
	"theora":     "libtheora",
}

// EncoderForCodec maps a probed codec name to the encoder used for the
// output. The second result reports whether a mapping existed; unmapped
// codecs get DefaultVideoEncoder.
func EncoderForCodec(codec string) (string, bool) {
	encoder, ok := encoderByCodec[codec]
	if !ok {
		return DefaultVideoEncoder, false
	}
	return encoder, true
}

type VideoMeta struct {
	Width    int
	Height   int
	FPS      float64
	Codec    string
	Frames   int
	Duration float64
}

func ProbeVideo(path string) (VideoMeta, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return VideoMeta{}, fmt.Errorf("%w: probe %s: %v", ErrDecodeFailed, path, err)
	}
	return parseProbe(out)
}

func parseProbe(doc string) (VideoMeta, error) {
	var probe struct {
		Streams []struct {
			CodecType    string `json:"codec_type"`
			CodecName    string `json:"codec_name"`
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			RFrameRate   string `json:"r_frame_rate"`
			AvgFrameRate string `json:"avg_frame_rate"`
			NbFrames     string `json:"nb_frames"`
			Duration     string `json:"duration"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(doc), &probe); err != nil {
		return VideoMeta{}, fmt.Errorf("%w: parse probe output: %v", ErrDecodeFailed, err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		meta := VideoMeta{
			Width:  stream.Width,
			Height: stream.Height,
			Codec:  stream.CodecName,
		}
		if meta.Width <= 0 || meta.Height <= 0 {
			return VideoMeta{}, fmt.Errorf("%w: video stream reports size %dx%d", ErrDecodeFailed, meta.Width, meta.Height)
		}
		meta.FPS = parseRate(stream.AvgFrameRate)
		if meta.FPS == 0 {
			meta.FPS = parseRate(stream.RFrameRate)
		}
		if n, err := strconv.Atoi(stream.NbFrames); err == nil {
			meta.Frames = n
		}
		if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
			meta.Duration = d
		} else if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			meta.Duration = d
		}
		if meta.Frames == 0 && meta.Duration > 0 && meta.FPS > 0 {
			meta.Frames = int(meta.Duration*meta.FPS + 0.5)
		}
		return meta, nil
	}
	return VideoMeta{}, fmt.Errorf("%w: no video stream found", ErrDecodeFailed)
}

// parseRate parses an ffprobe rate such as "30000/1001" or "25".
func parseRate(rate string) float64 {
	if rate == "" {
		return 0
	}
	parts := strings.SplitN(rate, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}

// VideoReader streams decoded rgb24 frames from an ffmpeg process
// writing to a pipe.
type VideoReader struct {
	Width  int
	Height int

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	waited bool
}

func OpenVideoReader(path string, meta VideoMeta) (*VideoReader, error) {
	args := ffmpeg.Input(path, ffmpeg.KwArgs{"loglevel": "error"}).
		Output("pipe:1", ffmpeg.KwArgs{"format": "rawvideo", "pix_fmt": "rgb24"}).
		GetArgs()
	cmd := exec.Command("ffmpeg", args...)

	vr := &VideoReader{Width: meta.Width, Height: meta.Height, cmd: cmd}
	cmd.Stderr = &vr.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: open decoder pipe: %v", ErrDecodeFailed, err)
	}
	vr.stdout = stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %v", ErrDecodeFailed, err)
	}
	return vr, nil
}

// ReadInto fills im with the next decoded frame. Returns io.EOF once
// the stream is exhausted.
func (vr *VideoReader) ReadInto(im Image) error {
	if im.Width != vr.Width || im.Height != vr.Height {
		return fmt.Errorf("%w: frame buffer is %dx%d, stream is %dx%d",
			ErrDecodeFailed, im.Width, im.Height, vr.Width, vr.Height)
	}
	_, err := io.ReadFull(vr.stdout, im.Bytes)
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		return vr.fail(err)
	}
	return nil
}

// fail tears the decoder down after a read error so its stderr can be
// read safely, then reports the combined error.
func (vr *VideoReader) fail(err error) error {
	vr.waited = true
	vr.stdout.Close()
	vr.cmd.Wait()
	return fmt.Errorf("%w: read frame: %v%s", ErrDecodeFailed, err, stderrTail(&vr.stderr))
}

func (vr *VideoReader) Close() {
	if vr.waited {
		return
	}
	vr.waited = true
	vr.stdout.Close()
	vr.cmd.Wait()
}

// VideoWriter streams rgb24 frames into an ffmpeg encoder process
// through a pipe. The container comes from the output extension.
type VideoWriter struct {
	Width   int
	Height  int
	Encoder string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	frames int
	closed bool
}

// AcquireVideoWriter resolves and starts the encoder in two steps:
// check the name against the local ffmpeg build's encoder list, then
// spawn the process. If either step fails for a non-default encoder,
// acquisition is retried once with DefaultVideoEncoder. The bool
// result reports whether that fallback was taken.
func AcquireVideoWriter(path string, meta VideoMeta, encoder string) (*VideoWriter, bool, error) {
	writer, err := acquireWriter(path, meta, encoder)
	if err == nil {
		return writer, false, nil
	}
	if encoder == DefaultVideoEncoder {
		return nil, false, err
	}
	writer, ferr := acquireWriter(path, meta, DefaultVideoEncoder)
	if ferr != nil {
		if !errors.Is(ferr, ErrEncoderUnavailable) {
			ferr = fmt.Errorf("%w: %v", ErrEncoderUnavailable, ferr)
		}
		return nil, true, ferr
	}
	return writer, true, nil
}

func acquireWriter(path string, meta VideoMeta, encoder string) (*VideoWriter, error) {
	ok, err := encoderAvailable(encoder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is not in this ffmpeg build", ErrEncoderUnavailable, encoder)
	}
	return OpenVideoWriter(path, meta, encoder)
}

// encoderAvailable reports whether the local ffmpeg build ships the
// named encoder.
func encoderAvailable(name string) (bool, error) {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").Output()
	if err != nil {
		return false, fmt.Errorf("list encoders: %v", err)
	}
	return listedEncoder(string(out), name), nil
}

// listedEncoder scans `ffmpeg -encoders` output. The listing opens
// with a flag legend closed by a dashed line; encoder rows after it
// are "flags name description".
func listedEncoder(listing, name string) bool {
	table := false
	for _, line := range strings.Split(listing, "\n") {
		if !table {
			table = strings.HasPrefix(strings.TrimSpace(line), "---")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

func OpenVideoWriter(path string, meta VideoMeta, encoder string) (*VideoWriter, error) {
	rate := strconv.FormatFloat(meta.FPS, 'f', -1, 64)
	args := ffmpeg.Input("pipe:0", ffmpeg.KwArgs{
		"loglevel":   "error",
		"format":     "rawvideo",
		"pix_fmt":    "rgb24",
		"video_size": fmt.Sprintf("%dx%d", meta.Width, meta.Height),
		"framerate":  rate,
	}).
		Output(path, ffmpeg.KwArgs{"vcodec": encoder, "pix_fmt": "yuv420p"}).
		OverWriteOutput().
		GetArgs()
	cmd := exec.Command("ffmpeg", args...)

	vw := &VideoWriter{Width: meta.Width, Height: meta.Height, Encoder: encoder, cmd: cmd}
	cmd.Stderr = &vw.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: open encoder pipe: %v", ErrEncodeFailed, err)
	}
	vw.stdin = stdin
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %v", ErrEncodeFailed, err)
	}
	return vw, nil
}

// WriteFrame pushes one frame to the encoder.
func (vw *VideoWriter) WriteFrame(im Image) error {
	if im.Width != vw.Width || im.Height != vw.Height {
		return fmt.Errorf("%w: frame is %dx%d, writer is %dx%d",
			ErrEncodeFailed, im.Width, im.Height, vw.Width, vw.Height)
	}
	if vw.closed {
		return fmt.Errorf("%w: encoder %s already closed", ErrEncodeFailed, vw.Encoder)
	}
	if _, err := vw.stdin.Write(im.Bytes); err != nil {
		return vw.fail(err)
	}
	vw.frames++
	return nil
}

func (vw *VideoWriter) FramesWritten() int {
	return vw.frames
}

// fail tears the encoder down after a write error so its stderr can be
// read safely, then reports the combined error.
func (vw *VideoWriter) fail(err error) error {
	vw.closed = true
	vw.stdin.Close()
	vw.cmd.Wait()
	return fmt.Errorf("%w: encoder %s: %v%s", ErrEncodeFailed, vw.Encoder, err, stderrTail(&vw.stderr))
}

// Close flushes the stream and waits for the encoder to finish writing
// the container. Calling Close again is a no-op.
func (vw *VideoWriter) Close() error {
	if vw.closed {
		return nil
	}
	vw.closed = true
	vw.stdin.Close()
	if err := vw.cmd.Wait(); err != nil {
		return fmt.Errorf("%w: encoder %s: %v%s", ErrEncodeFailed, vw.Encoder, err, stderrTail(&vw.stderr))
	}
	return nil
}

// stderrTail reports the last lines a finished ffmpeg process wrote to
// stderr. Only valid after Wait.
func stderrTail(buf *bytes.Buffer) string {
	s := strings.TrimSpace(buf.String())
	if s == "" {
		return ""
	}
	const keep = 512
	if len(s) > keep {
		s = s[len(s)-keep:]
	}
	return ": " + s
}
