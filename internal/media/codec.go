package media

import (
	"fmt"
	"image"
	"time"

	"motioncapture/internal/trigger"

	"gocv.io/x/gocv"
)

// Codec decodes camera JPEGs onto a fixed-size RGBA canvas and encodes
// snapshots as PNG.
type Codec struct {
	Width  int
	Height int
}

// NewCodec returns a codec drawing frames at width x height.
func NewCodec(width, height int) *Codec {
	return &Codec{Width: width, Height: height}
}

// Decode turns a JPEG (or any format OpenCV reads) into a PixelFrame.
func (c *Codec) Decode(data []byte, at time.Time) (*trigger.PixelFrame, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("decoded image is empty")
	}

	resized := gocv.NewMat()
	defer resized.Close()
	if mat.Cols() != c.Width || mat.Rows() != c.Height {
		if err := gocv.Resize(mat, &resized, image.Pt(c.Width, c.Height), 0, 0, gocv.InterpolationLinear); err != nil {
			return nil, fmt.Errorf("failed to resize image: %v", err)
		}
	} else if err := mat.CopyTo(&resized); err != nil {
		return nil, fmt.Errorf("failed to copy image: %v", err)
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	if err := gocv.CvtColor(resized, &rgba, gocv.ColorBGRToRGBA); err != nil {
		return nil, fmt.Errorf("failed to convert image to RGBA: %v", err)
	}

	return trigger.FrameFromPix(c.Width, c.Height, rgba.ToBytes(), at)
}

// Encode renders a frame as PNG.
func (c *Codec) Encode(frame *trigger.PixelFrame) ([]byte, error) {
	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC4, frame.Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap frame: %v", err)
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	if err := gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR); err != nil {
		return nil, fmt.Errorf("failed to convert frame to BGR: %v", err)
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, bgr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %v", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// EncodeJPEG compresses a BGR mat for the live preview path.
func EncodeJPEG(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %v", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
