package diffusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCOOMatrix_ToCSRSumsDuplicates(t *testing.T) {
	coo := COOMatrix{
		Rows: []int{0, 2, 0, 1, 0, 2},
		Cols: []int{1, 0, 1, 2, 0, 0},
		Data: []float64{1, 2, 3, 4, 5, 6},
		NRow: 3,
		NCol: 3,
	}

	csr := coo.ToCSR()

	assert.Equal(t, 4, csr.NNZ())
	assert.Equal(t, 5.0, csr.At(0, 0))
	assert.Equal(t, 4.0, csr.At(0, 1))
	assert.Equal(t, 4.0, csr.At(1, 2))
	assert.Equal(t, 8.0, csr.At(2, 0))
	assert.Equal(t, 0.0, csr.At(1, 1))
	assert.Equal(t, []int{0, 2, 3, 4}, csr.IndPtr)
}

func TestCOOMatrix_ToCSRDropsCancelledEntries(t *testing.T) {
	coo := COOMatrix{
		Rows: []int{0, 0, 1},
		Cols: []int{1, 1, 0},
		Data: []float64{2, -2, 1},
		NRow: 2,
		NCol: 2,
	}

	csr := coo.ToCSR()

	assert.Equal(t, 1, csr.NNZ())
	assert.Equal(t, 1.0, csr.At(1, 0))
}

func randomSparse(r, c int, density float64, seed int64) *CSRMatrix {
	dense := uniformPoints(r, c, seed)
	coo := COOMatrix{NRow: r, NCol: c}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := dense.At(i, j); v < density {
				coo.Rows = append(coo.Rows, i)
				coo.Cols = append(coo.Cols, j)
				coo.Data = append(coo.Data, v*10)
			}
		}
	}
	return coo.ToCSR()
}

func TestMul_MatchesDense(t *testing.T) {
	a := randomSparse(7, 5, 0.4, 1)
	b := randomSparse(5, 6, 0.4, 2)

	product := Mul(a, b)

	var want mat.Dense
	want.Mul(a.ToDense(), b.ToDense())
	assert.True(t, mat.EqualApprox(&want, product.ToDense(), 1e-12))

	rows, cols := product.Dims()
	assert.Equal(t, 7, rows)
	assert.Equal(t, 6, cols)
}

func TestMul_PanicsOnShapeMismatch(t *testing.T) {
	a := randomSparse(3, 4, 0.5, 1)
	b := randomSparse(3, 4, 0.5, 2)

	assert.Panics(t, func() { Mul(a, b) })
}

func TestCSRMatrix_Transpose(t *testing.T) {
	m := randomSparse(4, 6, 0.5, 3)

	transposed := m.T()

	rows, cols := transposed.Dims()
	require.Equal(t, 6, rows)
	require.Equal(t, 4, cols)
	assert.True(t, mat.Equal(m.ToDense().T(), transposed.ToDense()))

	// Column indices stay sorted within each row
	for i := 0; i < transposed.NRow; i++ {
		row := transposed.Indices[transposed.IndPtr[i]:transposed.IndPtr[i+1]]
		for e := 1; e < len(row); e++ {
			assert.Less(t, row[e-1], row[e])
		}
	}
}

func TestCSRMatrix_ScaleSymAndRowSums(t *testing.T) {
	m := COOMatrix{
		Rows: []int{0, 0, 1, 1, 2},
		Cols: []int{0, 1, 0, 2, 1},
		Data: []float64{2, 1, 1, 3, 3},
		NRow: 3,
		NCol: 3,
	}.ToCSR()

	assert.Equal(t, []float64{3, 4, 3}, m.RowSums())

	scaled := m.ScaleSym([]float64{1, 2, 0.5})
	assert.Equal(t, 2.0, scaled.At(0, 0))
	assert.Equal(t, 2.0, scaled.At(0, 1))
	assert.Equal(t, 2.0, scaled.At(1, 0))
	assert.Equal(t, 3.0, scaled.At(1, 2))
	assert.Equal(t, 3.0, scaled.At(2, 1))

	// The receiver is not modified
	assert.Equal(t, 1.0, m.At(0, 1))
}

func TestCSRMatrix_Symmetrized(t *testing.T) {
	m := COOMatrix{
		Rows: []int{0, 1, 1, 2},
		Cols: []int{1, 0, 1, 0},
		Data: []float64{0.3, 0.5, 2, 4},
		NRow: 3,
		NCol: 3,
	}.ToCSR()

	sym := m.Symmetrized()

	assert.InDelta(t, 0.4, sym.At(0, 1), 1e-15)
	assert.Equal(t, sym.At(0, 1), sym.At(1, 0))
	assert.Equal(t, 2.0, sym.At(1, 1))
	assert.Equal(t, 2.0, sym.At(0, 2))
	assert.Equal(t, 2.0, sym.At(2, 0))
	assert.Equal(t, 0.0, sym.At(2, 2))
}
