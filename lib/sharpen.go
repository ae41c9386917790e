package lib

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// Sharpen convolves the frame with the kernel and returns the result as
// a new frame of the same dimensions. The input is never modified.
//
// Neighborhoods are taken with edge replication: out-of-bounds indices
// clamp to the nearest row or column. Each channel sum is rounded to the
// nearest integer and saturated to [0, 255].
func Sharpen(im Image, k Kernel) (Image, error) {
	if k.weights == nil {
		return Image{}, ErrInvalidKernelShape
	}

	out := NewImage(im.Width, im.Height)
	if im.Width == 0 || im.Height == 0 {
		return out, nil
	}

	size := k.Size()
	radius := k.Radius()
	weights := make([]float64, 0, size*size)
	for ky := 0; ky < size; ky++ {
		for kx := 0; kx < size; kx++ {
			weights = append(weights, k.At(ky, kx))
		}
	}

	parallel.Line(im.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < im.Width; x++ {
				var rsum, gsum, bsum float64
				for ky := 0; ky < size; ky++ {
					sy := clamp(y+ky-radius, 0, im.Height-1)
					for kx := 0; kx < size; kx++ {
						sx := clamp(x+kx-radius, 0, im.Width-1)
						w := weights[ky*size+kx]
						offset := (sy*im.Width + sx) * 3
						rsum += w * float64(im.Bytes[offset])
						gsum += w * float64(im.Bytes[offset+1])
						bsum += w * float64(im.Bytes[offset+2])
					}
				}
				out.SetPixel(x, y, saturate(rsum), saturate(gsum), saturate(bsum))
			}
		}
	})

	return out, nil
}

func saturate(v float64) byte {
	return byte(clamp(int(math.Round(v)), 0, 255))
}
