package diffusion

// indicatorMatrix encodes the neighbor relation as n*k unit triples (i, j)
// for every neighbor j of point i, summing any duplicate pairs.
func indicatorMatrix(neighbors [][]int, n int) *CSRMatrix {
	k := 0
	if n > 0 {
		k = len(neighbors[0])
	}

	coo := COOMatrix{
		Rows: make([]int, 0, n*k),
		Cols: make([]int, 0, n*k),
		Data: make([]float64, 0, n*k),
		NRow: n,
		NCol: n,
	}
	for i, row := range neighbors {
		for _, j := range row {
			coo.Rows = append(coo.Rows, i)
			coo.Cols = append(coo.Cols, j)
			coo.Data = append(coo.Data, 1)
		}
	}

	return coo.ToCSR()
}

// affinityMatrix builds the shared-neighbor affinity W = W0 * W0^T.
// W[i][j] is the number of points that are k-nearest neighbors of both i and
// j. The entries are small integers, so W is exactly symmetric.
func affinityMatrix(neighbors [][]int, n int) *CSRMatrix {
	indicator := indicatorMatrix(neighbors, n)
	return Mul(indicator, indicator.T())
}
