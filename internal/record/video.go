package record

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"
	"github.com/pkg/errors"

	"github.com/olivierh59500/specks/internal/sim"
)

// Recorder captures frames into an MJPEG AVI file
type Recorder struct {
	raster  *Rasterizer
	writer  mjpeg.AviWriter
	frame   *image.RGBA
	buf     bytes.Buffer
	options *jpeg.Options
	frames  int
}

// NewRecorder creates the AVI file at path
func NewRecorder(path string, width, height, fps int) (*Recorder, error) {
	writer, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, errors.Wrapf(err, "creating video %s", path)
	}
	raster := NewRasterizer(width, height)
	return &Recorder{
		raster:  raster,
		writer:  writer,
		frame:   image.NewRGBA(image.Rect(0, 0, width, height)),
		options: &jpeg.Options{Quality: 90},
	}, nil
}

// Capture renders the current state as the next video frame
func (r *Recorder) Capture(s *sim.System) error {
	r.raster.RenderInto(r.frame, s)
	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, r.frame, r.options); err != nil {
		return errors.Wrap(err, "encoding frame")
	}
	if err := r.writer.AddFrame(r.buf.Bytes()); err != nil {
		return errors.Wrap(err, "writing frame")
	}
	r.frames++
	return nil
}

// Frames returns how many frames were captured
func (r *Recorder) Frames() int { return r.frames }

// Close finalises the AVI index
func (r *Recorder) Close() error {
	return errors.Wrap(r.writer.Close(), "closing video")
}
