package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dudu/facerestore/internal/face"
)

func TestEstimateSimilarity_RecoversKnownTransform(t *testing.T) {
	theta := 0.3
	scale := 1.7
	want := Affine{
		{scale * math.Cos(theta), -scale * math.Sin(theta), 12},
		{scale * math.Sin(theta), scale * math.Cos(theta), -7},
	}

	src := []face.Point{{X: 10, Y: 20}, {X: 60, Y: 22}, {X: 35, Y: 50}, {X: 15, Y: 80}, {X: 58, Y: 79}}
	dst := make([]face.Point, len(src))
	for i, p := range src {
		dst[i] = want.Apply(p)
	}

	got, err := EstimateSimilarity(src, dst)
	require.NoError(t, err)
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			require.InDelta(t, want[r][c], got[r][c], 1e-3)
		}
	}
}

func TestEstimateSimilarity_TemplateOntoItself(t *testing.T) {
	tpl := Template(FaceSize)
	m, err := EstimateSimilarity(tpl, tpl)
	require.NoError(t, err)

	for _, p := range tpl {
		q := m.Apply(p)
		require.InDelta(t, p.X, q.X, 1e-3)
		require.InDelta(t, p.Y, q.Y, 1e-3)
	}
}

func TestEstimateSimilarity_Degenerate(t *testing.T) {
	same := []face.Point{{X: 1, Y: 1}, {X: 1, Y: 1}}
	_, err := EstimateSimilarity(same, same)
	require.Error(t, err)

	_, err = EstimateSimilarity([]face.Point{{X: 1, Y: 1}}, []face.Point{{X: 1, Y: 1}})
	require.Error(t, err)
}

func TestAffine_Invert(t *testing.T) {
	m := Affine{{2, 0.5, 3}, {-0.5, 2, 4}}
	inv, err := m.Invert()
	require.NoError(t, err)

	p := face.Point{X: 17, Y: -3}
	back := inv.Apply(m.Apply(p))
	require.InDelta(t, p.X, back.X, 1e-4)
	require.InDelta(t, p.Y, back.Y, 1e-4)

	_, err = Affine{{1, 2, 0}, {2, 4, 0}}.Invert()
	require.Error(t, err)
}

func TestAffine_Scaled(t *testing.T) {
	m := Affine{{1, 0, 10}, {0, 1, 20}}
	s := m.Scaled(2, 0.5)
	require.Equal(t, Affine{{2, 0, 20.5}, {0, 2, 40.5}}, s)
}

func TestTemplate_Scales(t *testing.T) {
	half := Template(256)
	require.InDelta(t, ffhqTemplate[0].X/2, half[0].X, 1e-4)
	require.InDelta(t, ffhqTemplate[4].Y/2, half[4].Y, 1e-4)
}
