package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/berlandbor/wavtrim"
	"github.com/berlandbor/wavtrim/codec"
	"github.com/gin-gonic/gin"
)

var (
	errMissingFile  = errors.New("missing multipart field \"file\"")
	errInvalidField = errors.New("invalid form field")
)

// ClipInfo describes an uploaded clip.
type ClipInfo struct {
	Format     string      `json:"format,omitempty"`
	Duration   float64     `json:"duration"`
	SampleRate int         `json:"sample_rate"`
	Channels   int         `json:"channels"`
	Frames     int         `json:"frames"`
	Tags       *codec.Tags `json:"tags,omitempty"`
}

// TrimInfo is the effective trim range after clamping.
type TrimInfo struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
}

// Segment is one column of the waveform mapped onto a canvas of the
// configured height.
type Segment struct {
	Y0 float64 `json:"y0"`
	Y1 float64 `json:"y1"`
}

// WaveformResponse is the body of POST /api/v1/waveform.
type WaveformResponse struct {
	Clip     ClipInfo                `json:"clip"`
	Trim     TrimInfo                `json:"trim"`
	Width    int                     `json:"width"`
	Height   int                     `json:"height"`
	Points   []wavtrim.WaveformPoint `json:"points"`
	Segments []Segment               `json:"segments"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) info(c *gin.Context) {
	raw, err := readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := s.load(c, raw)
	if err != nil {
		respondError(c, err)
		return
	}

	info := clipInfo(session.Asset(), raw)

	tags, err := codec.ReadTags(raw)
	if err == nil {
		info.Tags = tags
	}

	c.JSON(http.StatusOK, info)
}

func (s *Server) waveform(c *gin.Context) {
	raw, err := readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	width, err := formInt(c, "width", s.cfg.Waveform.Width)
	if err != nil {
		respondError(c, err)
		return
	}

	full, err := formBool(c, "full")
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := s.load(c, raw)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := applyTrim(c, session); err != nil {
		respondError(c, err)
		return
	}

	var points []wavtrim.WaveformPoint
	if full {
		points, err = session.FullWaveform(width)
	} else {
		points, err = session.Waveform(width)
	}

	if err != nil {
		respondError(c, err)
		return
	}

	trim, _ := session.Trim()
	height := s.cfg.Waveform.Height

	segments := make([]Segment, len(points))
	for i, p := range points {
		segments[i].Y0, segments[i].Y1 = p.Segment(float64(height))
	}

	c.JSON(http.StatusOK, WaveformResponse{
		Clip:     clipInfo(session.Asset(), raw),
		Trim:     TrimInfo{Start: trim.Start, End: trim.End, Label: session.TrimLabel()},
		Width:    width,
		Height:   height,
		Points:   points,
		Segments: segments,
	})
}

func (s *Server) export(c *gin.Context) {
	raw, err := readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := s.load(c, raw)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := applyTrim(c, session); err != nil {
		respondError(c, err)
		return
	}

	if err := applySettings(c, session); err != nil {
		respondError(c, err)
		return
	}

	out, err := session.Export(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.cfg.Export.Filename))
	c.Header("X-Frames", strconv.Itoa(out.Frames))
	c.Data(http.StatusOK, "audio/wav", out.Data)
}

func (s *Server) load(c *gin.Context, raw []byte) (*wavtrim.Session, error) {
	session := wavtrim.NewSession(
		wavtrim.WithDecoder(s.decoder),
		wavtrim.WithSettings(s.cfg.Settings()),
		wavtrim.WithWaveformWidth(s.cfg.Waveform.Width),
	)

	if err := session.Load(c.Request.Context(), raw); err != nil {
		return nil, err
	}

	return session, nil
}

func readUpload(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, tooLarge
		}

		return nil, errMissingFile
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	return raw, nil
}

// applyTrim moves the trim edges the same way the interactive controls do,
// so out of range values are clamped rather than rejected.
func applyTrim(c *gin.Context, session *wavtrim.Session) error {
	if v, ok := c.GetPostForm("start"); ok {
		start, err := parseFloat("start", v)
		if err != nil {
			return err
		}

		if _, err := session.SetTrimStart(start); err != nil {
			return err
		}
	}

	if v, ok := c.GetPostForm("end"); ok {
		end, err := parseFloat("end", v)
		if err != nil {
			return err
		}

		if _, err := session.SetTrimEnd(end); err != nil {
			return err
		}
	}

	return nil
}

func applySettings(c *gin.Context, session *wavtrim.Session) error {
	if v, ok := c.GetPostForm("rate"); ok {
		rate, err := parseFloat("rate", v)
		if err != nil {
			return err
		}

		if err := session.SetPlaybackRate(rate); err != nil {
			return err
		}
	}

	if v, ok := c.GetPostForm("gain"); ok {
		gain, err := parseFloat("gain", v)
		if err != nil {
			return err
		}

		if err := session.SetGain(gain); err != nil {
			return err
		}
	}

	return nil
}

func parseFloat(name, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errInvalidField, name, value)
	}

	return f, nil
}

func formInt(c *gin.Context, name string, fallback int) (int, error) {
	v, ok := c.GetPostForm(name)
	if !ok {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errInvalidField, name, v)
	}

	return n, nil
}

func formBool(c *gin.Context, name string) (bool, error) {
	v, ok := c.GetPostForm(name)
	if !ok {
		return false, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", errInvalidField, name, v)
	}

	return b, nil
}

func clipInfo(asset *wavtrim.AudioAsset, raw []byte) ClipInfo {
	info := ClipInfo{
		Duration:   asset.Duration(),
		SampleRate: asset.SampleRate(),
		Channels:   asset.NumChannels(),
		Frames:     asset.NumFrames(),
	}

	if format, err := codec.Detect(raw); err == nil {
		info.Format = string(format)
	}

	return info
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, codec.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, wavtrim.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errMissingFile),
		errors.Is(err, errInvalidField),
		errors.Is(err, wavtrim.ErrInvalidRange),
		errors.Is(err, wavtrim.ErrInvalidRate),
		errors.Is(err, wavtrim.ErrInvalidGain),
		errors.Is(err, wavtrim.ErrInvalidWidth):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
