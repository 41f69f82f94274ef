package diffusion

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// COOMatrix represents a sparse matrix in coordinate (COO) format.
// Duplicate (row, col) entries are allowed and are summed by ToCSR.
type COOMatrix struct {
	Rows []int
	Cols []int
	Data []float64
	NRow int
	NCol int
}

// ToCSR compresses the triples into row-major form. Duplicates are summed and
// entries that sum to zero are kept out of the structure.
func (coo COOMatrix) ToCSR() *CSRMatrix {
	rowPointers := make([]int, coo.NRow+1)
	for _, r := range coo.Rows {
		rowPointers[r+1]++
	}
	for i := 0; i < coo.NRow; i++ {
		rowPointers[i+1] += rowPointers[i]
	}

	// Scatter into row buckets, then sort and merge each bucket
	next := make([]int, coo.NRow)
	copy(next, rowPointers[:coo.NRow])
	cols := make([]int, len(coo.Cols))
	vals := make([]float64, len(coo.Data))
	for e, r := range coo.Rows {
		slot := next[r]
		cols[slot] = coo.Cols[e]
		vals[slot] = coo.Data[e]
		next[r]++
	}

	csr := &CSRMatrix{
		NRow:   coo.NRow,
		NCol:   coo.NCol,
		IndPtr: make([]int, coo.NRow+1),
	}
	for i := 0; i < coo.NRow; i++ {
		start, end := rowPointers[i], rowPointers[i+1]
		bucket := rowBucket{cols: cols[start:end], vals: vals[start:end]}
		sort.Sort(bucket)

		for e := start; e < end; {
			col, sum := cols[e], 0.0
			for ; e < end && cols[e] == col; e++ {
				sum += vals[e]
			}
			if sum != 0 {
				csr.Indices = append(csr.Indices, col)
				csr.Data = append(csr.Data, sum)
			}
		}
		csr.IndPtr[i+1] = len(csr.Indices)
	}

	return csr
}

type rowBucket struct {
	cols []int
	vals []float64
}

func (b rowBucket) Len() int           { return len(b.cols) }
func (b rowBucket) Less(i, j int) bool { return b.cols[i] < b.cols[j] }
func (b rowBucket) Swap(i, j int) {
	b.cols[i], b.cols[j] = b.cols[j], b.cols[i]
	b.vals[i], b.vals[j] = b.vals[j], b.vals[i]
}

// CSRMatrix is a compressed sparse row matrix. Column indices are sorted
// within each row and contain no duplicates.
type CSRMatrix struct {
	NRow    int
	NCol    int
	IndPtr  []int
	Indices []int
	Data    []float64
}

// Dims returns the number of rows and columns.
func (m *CSRMatrix) Dims() (r, c int) {
	return m.NRow, m.NCol
}

// NNZ returns the number of stored entries.
func (m *CSRMatrix) NNZ() int {
	return len(m.Data)
}

// At returns the element at row i, column j.
func (m *CSRMatrix) At(i, j int) float64 {
	start, end := m.IndPtr[i], m.IndPtr[i+1]
	row := m.Indices[start:end]
	pos := sort.SearchInts(row, j)
	if pos < len(row) && row[pos] == j {
		return m.Data[start+pos]
	}
	return 0
}

// DoNonZero calls fn for every stored entry in row-major order.
func (m *CSRMatrix) DoNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < m.NRow; i++ {
		for e := m.IndPtr[i]; e < m.IndPtr[i+1]; e++ {
			fn(i, m.Indices[e], m.Data[e])
		}
	}
}

// T returns the transpose as a new matrix.
func (m *CSRMatrix) T() *CSRMatrix {
	t := &CSRMatrix{
		NRow:    m.NCol,
		NCol:    m.NRow,
		IndPtr:  make([]int, m.NCol+1),
		Indices: make([]int, len(m.Indices)),
		Data:    make([]float64, len(m.Data)),
	}
	for _, col := range m.Indices {
		t.IndPtr[col+1]++
	}
	for j := 0; j < m.NCol; j++ {
		t.IndPtr[j+1] += t.IndPtr[j]
	}

	// Walking rows in order keeps the transposed column indices sorted
	next := make([]int, m.NCol)
	copy(next, t.IndPtr[:m.NCol])
	m.DoNonZero(func(i, j int, v float64) {
		slot := next[j]
		t.Indices[slot] = i
		t.Data[slot] = v
		next[j]++
	})

	return t
}

// RowSums returns the sum of each row.
func (m *CSRMatrix) RowSums() []float64 {
	sums := make([]float64, m.NRow)
	for i := 0; i < m.NRow; i++ {
		for e := m.IndPtr[i]; e < m.IndPtr[i+1]; e++ {
			sums[i] += m.Data[e]
		}
	}
	return sums
}

// ScaleSym returns diag(s) * m * diag(s) for a square m.
// Each entry is multiplied by s[i]*s[j] as one product, so a symmetric m
// stays exactly symmetric.
func (m *CSRMatrix) ScaleSym(s []float64) *CSRMatrix {
	scaled := &CSRMatrix{
		NRow:    m.NRow,
		NCol:    m.NCol,
		IndPtr:  append([]int(nil), m.IndPtr...),
		Indices: append([]int(nil), m.Indices...),
		Data:    make([]float64, len(m.Data)),
	}
	for i := 0; i < m.NRow; i++ {
		for e := m.IndPtr[i]; e < m.IndPtr[i+1]; e++ {
			scaled.Data[e] = m.Data[e] * (s[i] * s[m.Indices[e]])
		}
	}
	return scaled
}

// Mul returns the product a * b using Gustavson's row-by-row algorithm.
// It panics if the inner dimensions differ.
func Mul(a, b *CSRMatrix) *CSRMatrix {
	if a.NCol != b.NRow {
		panic(mat.ErrShape)
	}

	product := &CSRMatrix{
		NRow:   a.NRow,
		NCol:   b.NCol,
		IndPtr: make([]int, a.NRow+1),
	}

	accumulator := make([]float64, b.NCol)
	marker := make([]int, b.NCol)
	for j := range marker {
		marker[j] = -1
	}
	touched := make([]int, 0, b.NCol)

	for i := 0; i < a.NRow; i++ {
		touched = touched[:0]
		for ea := a.IndPtr[i]; ea < a.IndPtr[i+1]; ea++ {
			k, aik := a.Indices[ea], a.Data[ea]
			for eb := b.IndPtr[k]; eb < b.IndPtr[k+1]; eb++ {
				j := b.Indices[eb]
				if marker[j] != i {
					marker[j] = i
					accumulator[j] = 0
					touched = append(touched, j)
				}
				accumulator[j] += aik * b.Data[eb]
			}
		}

		sort.Ints(touched)
		for _, j := range touched {
			if accumulator[j] != 0 {
				product.Indices = append(product.Indices, j)
				product.Data = append(product.Data, accumulator[j])
			}
		}
		product.IndPtr[i+1] = len(product.Indices)
	}

	return product
}

// Symmetrized returns (m + m^T) / 2 as a dense symmetric matrix.
// The result is exactly symmetric regardless of round-off in m.
func (m *CSRMatrix) Symmetrized() *mat.SymDense {
	n := m.NRow
	buffer := make([]float64, n*n)
	m.DoNonZero(func(i, j int, v float64) {
		half := v / 2
		buffer[i*n+j] += half
		buffer[j*n+i] += half
	})
	return mat.NewSymDense(n, buffer)
}

// ToDense expands m into a dense matrix.
func (m *CSRMatrix) ToDense() *mat.Dense {
	dense := mat.NewDense(m.NRow, m.NCol, nil)
	m.DoNonZero(func(i, j int, v float64) {
		dense.Set(i, j, v)
	})
	return dense
}
