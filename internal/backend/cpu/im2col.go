package cpu

import "github.com/born-ml/vision/internal/tensor"

// convGeometry describes one Conv2D call over NCHW tensors.
type convGeometry struct {
	n, cIn, h, w    int
	cOut, kh, kw    int
	hOut, wOut      int
	stride, padding int
}

// colRows is the height of the im2col matrix (one row per kernel tap).
func (g convGeometry) colRows() int { return g.cIn * g.kh * g.kw }

// colCols is the width of the im2col matrix (one column per output pixel).
func (g convGeometry) colCols() int { return g.hOut * g.wOut }

// im2col unfolds one [C, H, W] image into col [C*KH*KW, HOut*WOut].
// Taps falling into the zero padding are written as 0.
func im2col[T tensor.DType](col, img []T, g convGeometry) {
	L := g.colCols()
	for c := 0; c < g.cIn; c++ {
		plane := img[c*g.h*g.w : (c+1)*g.h*g.w]
		for ki := 0; ki < g.kh; ki++ {
			for kj := 0; kj < g.kw; kj++ {
				row := (c*g.kh+ki)*g.kw + kj
				dst := col[row*L : (row+1)*L]
				for oh := 0; oh < g.hOut; oh++ {
					ih := oh*g.stride - g.padding + ki
					line := dst[oh*g.wOut : (oh+1)*g.wOut]
					if ih < 0 || ih >= g.h {
						clear(line)
						continue
					}
					for ow := range line {
						iw := ow*g.stride - g.padding + kj
						if iw < 0 || iw >= g.w {
							line[ow] = 0
							continue
						}
						line[ow] = plane[ih*g.w+iw]
					}
				}
			}
		}
	}
}

// col2im folds col [C*KH*KW, HOut*WOut] back into img [C, H, W], summing
// overlapping taps. Padding taps are dropped.
func col2im[T tensor.DType](img, col []T, g convGeometry) {
	L := g.colCols()
	for c := 0; c < g.cIn; c++ {
		plane := img[c*g.h*g.w : (c+1)*g.h*g.w]
		for ki := 0; ki < g.kh; ki++ {
			for kj := 0; kj < g.kw; kj++ {
				row := (c*g.kh+ki)*g.kw + kj
				src := col[row*L : (row+1)*L]
				for oh := 0; oh < g.hOut; oh++ {
					ih := oh*g.stride - g.padding + ki
					if ih < 0 || ih >= g.h {
						continue
					}
					for ow := 0; ow < g.wOut; ow++ {
						iw := ow*g.stride - g.padding + kj
						if iw < 0 || iw >= g.w {
							continue
						}
						plane[ih*g.w+iw] += src[oh*g.wOut+ow]
					}
				}
			}
		}
	}
}
