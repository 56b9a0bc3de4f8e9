package ocr

import (
	"image"
	"image/color"
	"sort"
)

// Preprocess applies the clean-up chain used before every tesseract call:
// grayscale, 3x3 median noise reduction, contrast normalization, Otsu binarization.
func Preprocess(img image.Image) *image.Gray {
	g := Grayscale(img)
	g = MedianFilter3(g)
	g = NormalizeContrast(g)
	return Binarize(g, OtsuThreshold(g))
}

// Grayscale converts img to an 8-bit luminance image anchored at (0,0).
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetGray(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray))
		}
	}
	return out
}

// MedianFilter3 replaces each pixel by the median of its 3x3 neighbourhood,
// replicating edge pixels.
func MedianFilter3(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	var win [9]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					win[n] = g.GrayAt(b.Min.X+clamp(x+dx, 0, w-1), b.Min.Y+clamp(y+dy, 0, h-1)).Y
					n++
				}
			}
			s := win[:]
			sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
			out.SetGray(x, y, color.Gray{Y: s[4]})
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func histogram(g *image.Gray) (hist [256]int, total int) {
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[g.GrayAt(x, y).Y]++
			total++
		}
	}
	return hist, total
}

// contrast stretch clips this fraction of pixels at each end of the histogram
const stretchClip = 0.01

// NormalizeContrast linearly stretches the 1st..99th percentile range to 0..255.
// Flat images are returned unchanged.
func NormalizeContrast(g *image.Gray) *image.Gray {
	hist, total := histogram(g)
	if total == 0 {
		return g
	}
	clip := int(float64(total) * stretchClip)
	lo, hi := 0, 255
	for acc := 0; lo < 255; lo++ {
		acc += hist[lo]
		if acc > clip {
			break
		}
	}
	for acc := 0; hi > 0; hi-- {
		acc += hist[hi]
		if acc > clip {
			break
		}
	}
	if hi <= lo {
		return g
	}

	var lut [256]uint8
	for v := 0; v < 256; v++ {
		s := (v - lo) * 255 / (hi - lo)
		lut[v] = uint8(clamp(s, 0, 255))
	}
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetGray(x, y, color.Gray{Y: lut[g.GrayAt(b.Min.X+x, b.Min.Y+y).Y]})
		}
	}
	return out
}

// OtsuThreshold returns the gray level maximizing between-class variance.
func OtsuThreshold(g *image.Gray) uint8 {
	hist, total := histogram(g)
	if total == 0 {
		return 127
	}
	var sum float64
	for t := 0; t < 256; t++ {
		sum += float64(t * hist[t])
	}

	var (
		sumB, best float64
		wB         int
		threshold  int
	)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}

// Binarize maps pixels above t to white and the rest to black.
func Binarize(g *image.Gray, t uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if g.GrayAt(b.Min.X+x, b.Min.Y+y).Y > t {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}
