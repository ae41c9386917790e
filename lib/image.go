package lib

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Image is a packed 8-bit raster frame, 3 bytes per pixel in RGB order,
// rows stored top to bottom.
type Image struct {
	Width  int
	Height int
	Bytes  []byte
}

func NewImage(width int, height int) Image {
	return Image{
		Width:  width,
		Height: height,
		Bytes:  make([]byte, 3*width*height),
	}
}

func ImageFromBytes(width int, height int, bytes []byte) Image {
	return Image{
		Width:  width,
		Height: height,
		Bytes:  bytes,
	}
}

func (im Image) AsImage() image.Image {
	pixbuf := make([]byte, im.Width*im.Height*4)
	j := 0
	channels := 0
	for i := range im.Bytes {
		pixbuf[j] = im.Bytes[i]
		j++
		channels++
		if channels == 3 {
			pixbuf[j] = 255
			j++
			channels = 0
		}
	}
	img := &image.RGBA{
		Pix:    pixbuf,
		Stride: im.Width * 4,
		Rect:   image.Rect(0, 0, im.Width, im.Height),
	}
	return img
}

func (im Image) AsPNG() []byte {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, im.AsImage()); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func (im Image) SetRGB(i int, j int, color [3]uint8) {
	if i < 0 || i >= im.Width || j < 0 || j >= im.Height {
		return
	}
	for channel := 0; channel < 3; channel++ {
		im.Bytes[(j*im.Width+i)*3+channel] = color[channel]
	}
}

func (im Image) GetRGB(i int, j int) [3]uint8 {
	var color [3]uint8
	for channel := 0; channel < 3; channel++ {
		color[channel] = im.Bytes[(j*im.Width+i)*3+channel]
	}
	return color
}

func (im Image) Copy() Image {
	bytes := make([]byte, len(im.Bytes))
	copy(bytes, im.Bytes)
	return Image{
		Width:  im.Width,
		Height: im.Height,
		Bytes:  bytes,
	}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	} else if value > max {
		return max
	} else {
		return value
	}
}

// for image.Image

func (im Image) Set(i int, j int, c color.Color) {
	r, g, b, _ := c.RGBA()
	r = r >> 8
	g = g >> 8
	b = b >> 8
	im.SetRGB(i, j, [3]uint8{uint8(r), uint8(g), uint8(b)})
}

func (im Image) At(i int, j int) color.Color {
	c := im.GetRGB(i, j)
	return color.RGBA{c[0], c[1], c[2], 255}
}

func (im Image) ColorModel() color.Model {
	return color.RGBAModel
}

func (im Image) Bounds() image.Rectangle {
	return image.Rectangle{image.Point{0, 0}, image.Point{im.Width, im.Height}}
}

func (img *Image) GetPixel(x, y int) (byte, byte, byte) {
	offset := (y*img.Width + x) * 3
	return img.Bytes[offset], img.Bytes[offset+1], img.Bytes[offset+2]
}

func (img *Image) SetPixel(x, y int, r, g, b byte) {
	offset := (y*img.Width + x) * 3
	img.Bytes[offset] = r
	img.Bytes[offset+1] = g
	img.Bytes[offset+2] = b
}

func ImagetoNRGBA(img *Image) *image.NRGBA {
	rgba := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))

	idx := 0
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r := img.Bytes[idx]
			g := img.Bytes[idx+1]
			b := img.Bytes[idx+2]
			rgba.SetNRGBA(x, y, color.NRGBA{r, g, b, 255})
			idx += 3
		}
	}
	return rgba
}

func fromImage(img image.Image) *Image {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	bytes := make([]byte, width*height*3)

	idx := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			bytes[idx] = byte(r >> 8)
			bytes[idx+1] = byte(g >> 8)
			bytes[idx+2] = byte(b >> 8)
			idx += 3
		}
	}
	return &Image{Width: width, Height: height, Bytes: bytes}
}
