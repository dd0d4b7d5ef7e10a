package align

import (
	"errors"
	"math"

	"github.com/dudu/facerestore/internal/face"
)

// FaceSize is the side of the aligned crop fed to the face networks
const FaceSize = 512

// ffhqTemplate holds the 5-point FFHQ reference landmarks for a 512x512 crop
var ffhqTemplate = [5]face.Point{
	{X: 192.98138, Y: 239.94708}, // left eye
	{X: 318.90277, Y: 240.19360}, // right eye
	{X: 256.63416, Y: 314.01935}, // nose
	{X: 201.26117, Y: 371.41043}, // left mouth
	{X: 313.08905, Y: 371.15118}, // right mouth
}

// Template returns the FFHQ reference landmarks scaled to a size x size crop
func Template(size int) []face.Point {
	s := float32(size) / float32(FaceSize)
	pts := make([]face.Point, len(ffhqTemplate))
	for i, p := range ffhqTemplate {
		pts[i] = face.Point{X: p.X * s, Y: p.Y * s}
	}
	return pts
}

// Affine is a 2x3 row-major affine matrix: [a b tx; c d ty]
type Affine [2][3]float64

// Apply maps a point through the transform
func (m Affine) Apply(p face.Point) face.Point {
	x, y := float64(p.X), float64(p.Y)
	return face.Point{
		X: float32(m[0][0]*x + m[0][1]*y + m[0][2]),
		Y: float32(m[1][0]*x + m[1][1]*y + m[1][2]),
	}
}

// Invert returns the inverse transform
func (m Affine) Invert() (Affine, error) {
	det := m[0][0]*m[1][1] - m[0][1]*m[1][0]
	if math.Abs(det) < 1e-12 {
		return Affine{}, errors.New("affine transform is singular")
	}

	a := m[1][1] / det
	b := -m[0][1] / det
	c := -m[1][0] / det
	d := m[0][0] / det

	return Affine{
		{a, b, -(a*m[0][2] + b*m[1][2])},
		{c, d, -(c*m[0][2] + d*m[1][2])},
	}, nil
}

// Scaled multiplies the whole matrix by f and shifts the translation by
// offset, which is how an inverse transform is lifted onto an upscaled canvas.
func (m Affine) Scaled(f, offset float64) Affine {
	var out Affine
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = m[r][c] * f
		}
		out[r][2] += offset
	}
	return out
}

// EstimateSimilarity computes the least-squares 2D similarity transform
// (rotation, uniform scale, translation) mapping src onto dst.
func EstimateSimilarity(src, dst []face.Point) (Affine, error) {
	n := len(src)
	if n < 2 || n != len(dst) {
		return Affine{}, errors.New("need at least two matching point pairs")
	}

	// Compute centroids
	var srcCx, srcCy, dstCx, dstCy float64
	for i := 0; i < n; i++ {
		srcCx += float64(src[i].X)
		srcCy += float64(src[i].Y)
		dstCx += float64(dst[i].X)
		dstCy += float64(dst[i].Y)
	}
	srcCx /= float64(n)
	srcCy /= float64(n)
	dstCx /= float64(n)
	dstCy /= float64(n)

	// Cross terms of the centered point sets
	var srcVar, a11, a12, a21, a22 float64
	for i := 0; i < n; i++ {
		sx := float64(src[i].X) - srcCx
		sy := float64(src[i].Y) - srcCy
		dx := float64(dst[i].X) - dstCx
		dy := float64(dst[i].Y) - dstCy

		srcVar += sx*sx + sy*sy
		a11 += sx * dx
		a12 += sx * dy
		a21 += sy * dx
		a22 += sy * dy
	}
	if srcVar < 1e-10 {
		return Affine{}, errors.New("source points are degenerate")
	}

	// For R = [c -s; s c]: c ∝ a11+a22, s ∝ a12-a21
	p := a11 + a22
	q := a12 - a21
	norm := math.Hypot(p, q)
	if norm < 1e-10 {
		return Affine{}, errors.New("source and destination are uncorrelated")
	}
	cosTheta := p / norm
	sinTheta := q / norm
	scale := norm / srcVar

	tx := dstCx - scale*(cosTheta*srcCx-sinTheta*srcCy)
	ty := dstCy - scale*(sinTheta*srcCx+cosTheta*srcCy)

	return Affine{
		{scale * cosTheta, -scale * sinTheta, tx},
		{scale * sinTheta, scale * cosTheta, ty},
	}, nil
}
