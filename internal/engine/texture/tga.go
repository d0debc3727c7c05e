package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types this decoder reads.
const (
	TGATypeUncompressed = 2  // true-color
	TGATypeRLE          = 10 // run-length encoded true-color
)

const tgaHeaderSize = 18

type tgaHeader struct {
	idLength     int
	colorMapType byte
	imageType    byte
	width        int
	height       int
	bpp          int
	topToBottom  bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, errors.New("tga: data too short")
	}
	h := tgaHeader{
		idLength:     int(data[0]),
		colorMapType: data[1],
		imageType:    data[2],
		width:        int(data[12]) | int(data[13])<<8,
		height:       int(data[14]) | int(data[15])<<8,
		bpp:          int(data[16]),
		topToBottom:  data[17]&0x20 != 0,
	}
	switch {
	case h.colorMapType != 0:
		return h, errors.New("tga: color-mapped images not supported")
	case h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE:
		return h, fmt.Errorf("tga: unsupported image type %d", h.imageType)
	case h.bpp != 24 && h.bpp != 32:
		return h, fmt.Errorf("tga: unsupported bit depth %d", h.bpp)
	case h.width == 0 || h.height == 0:
		return h, errors.New("tga: empty image")
	}
	return h, nil
}

// DecodeTGA decodes an uncompressed or RLE true-color TGA file.
func DecodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, errors.New("tga: data truncated")
	}

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	w := &tgaWriter{img: img, h: h, bpp: h.bpp / 8}
	src := data[offset:]

	if h.imageType == TGATypeUncompressed {
		if len(src) < h.width*h.height*w.bpp {
			return nil, errors.New("tga: pixel data truncated")
		}
		for !w.done() {
			w.put(src[:w.bpp])
			src = src[w.bpp:]
		}
		return img, nil
	}

	for !w.done() {
		if len(src) == 0 {
			return nil, errors.New("tga: rle data truncated")
		}
		packet := src[0]
		src = src[1:]
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if len(src) < w.bpp {
				return nil, errors.New("tga: rle data truncated")
			}
			for i := 0; i < count && !w.done(); i++ {
				w.put(src[:w.bpp])
			}
			src = src[w.bpp:]
			continue
		}
		for i := 0; i < count && !w.done(); i++ {
			if len(src) < w.bpp {
				return nil, errors.New("tga: rle data truncated")
			}
			w.put(src[:w.bpp])
			src = src[w.bpp:]
		}
	}
	return img, nil
}

// tgaWriter stores BGR(A) pixels in file order, flipping bottom-up files.
type tgaWriter struct {
	img *image.RGBA
	h   tgaHeader
	bpp int
	n   int
}

func (w *tgaWriter) done() bool {
	return w.n >= w.h.width*w.h.height
}

func (w *tgaWriter) put(px []byte) {
	x := w.n % w.h.width
	y := w.n / w.h.width
	if !w.h.topToBottom {
		y = w.h.height - 1 - y
	}
	i := w.img.PixOffset(x, y)
	w.img.Pix[i] = px[2]
	w.img.Pix[i+1] = px[1]
	w.img.Pix[i+2] = px[0]
	w.img.Pix[i+3] = 255
	if w.bpp == 4 {
		w.img.Pix[i+3] = px[3]
	}
	w.n++
}
