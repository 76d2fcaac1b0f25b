package loader

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ImageDecoder turns encoded image bytes into tightly packed RGBA8 staging data.
type ImageDecoder interface {
	// Decode detects the image format from content and decodes it.
	//
	// Parameters:
	//   - data: the encoded image
	//
	// Returns:
	//   - common.TextureStagingData: row-major RGBA8 pixels, non-premultiplied
	//   - error: an ErrImageFormat-caused error for unknown content, or the decode error
	Decode(data []byte) (common.TextureStagingData, error)
}

// decodeFunc decodes one container format.
type decodeFunc func(io.Reader) (image.Image, error)

// imageDecoders maps the extension filetype reports to the decoder for that format.
var imageDecoders = map[string]decodeFunc{
	"png":  png.Decode,
	"jpg":  jpeg.Decode,
	"gif":  gif.Decode,
	"bmp":  bmp.Decode,
	"tif":  tiff.Decode,
	"webp": webp.Decode,
}

// contentImageDecoder is the default ImageDecoder. It never trusts file extensions.
type contentImageDecoder struct{}

var _ ImageDecoder = contentImageDecoder{}

// NewImageDecoder returns the default content-sniffing decoder for PNG, JPEG, GIF, BMP, TIFF and WebP.
//
// Returns:
//   - ImageDecoder: the decoder
func NewImageDecoder() ImageDecoder {
	return contentImageDecoder{}
}

func (contentImageDecoder) Decode(data []byte) (common.TextureStagingData, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return common.TextureStagingData{}, errors.Wrap(ErrImageFormat, err.Error())
	}
	decode, ok := imageDecoders[kind.Extension]
	if !ok {
		if kind == filetype.Unknown {
			return common.TextureStagingData{}, errors.Wrap(ErrImageFormat, "unrecognized content")
		}
		return common.TextureStagingData{}, errors.Wrapf(ErrImageFormat, "unsupported type %s", kind.MIME.Value)
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return common.TextureStagingData{}, errors.Wrapf(err, "decode %s", kind.Extension)
	}
	return toStagingData(img), nil
}

// toStagingData converts any image into tightly packed non-premultiplied RGBA8.
func toStagingData(img image.Image) common.TextureStagingData {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != w*4 || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	return common.TextureStagingData{
		Pixels: nrgba.Pix[:w*h*4],
		Width:  uint32(w),
		Height: uint32(h),
	}
}
