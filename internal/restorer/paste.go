package restorer

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/dudu/facerestore/internal/align"
)

// cropBorder fills pixels outside the source when cropping a face
var cropBorder = color.RGBA{R: 132, G: 133, B: 135, A: 0}

func affineMat(m align.Affine) gocv.Mat {
	mat := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			mat.SetDoubleAt(r, c, m[r][c])
		}
	}
	return mat
}

// warpFace crops the aligned face of size x size out of img
func warpFace(img gocv.Mat, m align.Affine, size int) gocv.Mat {
	mat := affineMat(m)
	defer mat.Close()

	crop := gocv.NewMat()
	gocv.WarpAffineWithParams(img, &crop, mat, image.Pt(size, size),
		gocv.InterpolationLinear, gocv.BorderConstant, cropBorder)
	return crop
}

// canvas accumulates pasted faces over the upscaled background in float32
type canvas struct {
	img     gocv.Mat // CV_32FC3
	upscale float64
}

func newCanvas(background gocv.Mat, upscale int) canvas {
	img := gocv.NewMat()
	background.ConvertTo(&img, gocv.MatTypeCV32FC3)
	return canvas{img: img, upscale: float64(upscale)}
}

// paste warps a restored face back through the inverse of m and feathers
// it in with a mask eroded and blurred in proportion to the face area.
func (c canvas) paste(restored gocv.Mat, m align.Affine) error {
	inv, err := m.Invert()
	if err != nil {
		return err
	}
	offset := 0.0
	if c.upscale > 1 {
		offset = 0.5 * c.upscale
	}
	invMat := affineMat(inv.Scaled(c.upscale, offset))
	defer invMat.Close()

	size := image.Pt(c.img.Cols(), c.img.Rows())

	warped := gocv.NewMat()
	defer warped.Close()
	gocv.WarpAffine(restored, &warped, invMat, size)

	warpedF := gocv.NewMat()
	defer warpedF.Close()
	warped.ConvertTo(&warpedF, gocv.MatTypeCV32FC3)

	ones := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 0, 0, 0), restored.Rows(), restored.Cols(), gocv.MatTypeCV32F)
	defer ones.Close()

	invMask := gocv.NewMat()
	defer invMask.Close()
	gocv.WarpAffine(ones, &invMask, invMat, size)

	// Trim the interpolated rim of the warped face
	erosion := gocv.NewMat()
	defer erosion.Close()
	erode(invMask, &erosion, int(2*c.upscale))

	area := erosion.Sum().Val1
	wEdge := int(math.Sqrt(area)) / 20

	center := gocv.NewMat()
	defer center.Close()
	erode(erosion, &center, wEdge*2)

	soft := gocv.NewMat()
	defer soft.Close()
	blur := wEdge*2 + 1
	gocv.GaussianBlur(center, &soft, image.Pt(blur, blur), 0, 0, gocv.BorderDefault)

	erosion3 := merge3(erosion)
	defer erosion3.Close()
	soft3 := merge3(soft)
	defer soft3.Close()

	// pasted = erosion * face; img = img + soft * (pasted - img)
	pasted := gocv.NewMat()
	defer pasted.Close()
	gocv.Multiply(warpedF, erosion3, &pasted)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.Subtract(pasted, c.img, &diff)

	weighted := gocv.NewMat()
	defer weighted.Close()
	gocv.Multiply(diff, soft3, &weighted)

	gocv.Add(c.img, weighted, &c.img)
	return nil
}

// result converts back to 8-bit, saturating
func (c canvas) result() gocv.Mat {
	out := gocv.NewMat()
	c.img.ConvertTo(&out, gocv.MatTypeCV8UC3)
	return out
}

func (c canvas) Close() {
	c.img.Close()
}

// erode applies a k x k rectangular erosion; k < 1 falls back to 3x3
func erode(src gocv.Mat, dst *gocv.Mat, k int) {
	if k < 1 {
		k = 3
	}
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k))
	defer kernel.Close()
	gocv.Erode(src, dst, kernel)
}

func merge3(m gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	gocv.Merge([]gocv.Mat{m, m, m}, &out)
	return out
}
