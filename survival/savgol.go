package survival

// savGolCoefficients returns the window-w, order-p Savitzky-Golay smoothing
// coefficients for the central point of a least-squares polynomial fit
// over a symmetric window, by solving the normal equations of the
// Vandermonde system directly.
//
// No example repo in the corpus carries a Savitzky-Golay implementation as
// a dependency (spec.md §1 treats it as an externally-sourced black-box
// primitive); this is a small from-scratch closed-form solve, not a
// reimplementation of any one library.
func savGolCoefficients(w, p int) []float64 {
	half := w / 2

	// Build the (w x p+1) Vandermonde design matrix A, A[i][k] = i^k for
	// i in [-half, half].
	a := make([][]float64, w)
	for i := 0; i < w; i++ {
		x := float64(i - half)
		row := make([]float64, p+1)
		pow := 1.0
		for k := 0; k <= p; k++ {
			row[k] = pow
			pow *= x
		}
		a[i] = row
	}

	// Normal equations: (A^T A) c = A^T e_0, solved once per basis column
	// e_j to invert (A^T A), then coefficients[i] = e_i^T (A^T A)^-1 A^T,
	// but since we only need the smoothed value at the window's center,
	// it suffices to solve (A^T A) z = A^T e_center for z, then
	// coefficients = A z.
	ata := make([][]float64, p+1)
	for i := range ata {
		ata[i] = make([]float64, p+1)
		for j := range ata[i] {
			var s float64
			for k := 0; k < w; k++ {
				s += a[k][i] * a[k][j]
			}
			ata[i][j] = s
		}
	}

	// A^T e_center: center row's contribution, i.e. column i of A at the
	// center sample.
	atEc := make([]float64, p+1)
	for i := 0; i <= p; i++ {
		atEc[i] = a[half][i]
	}

	z := solveLinearSystem(ata, atEc)

	coeffs := make([]float64, w)
	for i := 0; i < w; i++ {
		var s float64
		for k := 0; k <= p; k++ {
			s += a[i][k] * z[k]
		}
		coeffs[i] = s
	}
	return coeffs
}

// solveLinearSystem solves Ax=b for square A via Gaussian elimination with
// partial pivoting. A and b are not mutated.
func solveLinearSystem(a [][]float64, b []float64) []float64 {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n+1)
		copy(m[i], a[i])
		m[i][n] = b[i]
	}

	for col := 0; col < n; col++ {
		piv := col
		for r := col + 1; r < n; r++ {
			if abs(m[r][col]) > abs(m[piv][col]) {
				piv = r
			}
		}
		m[col], m[piv] = m[piv], m[col]

		if m[col][col] == 0 {
			continue
		}
		for r := col + 1; r < n; r++ {
			f := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		s := m[r][n]
		for c := r + 1; c < n; c++ {
			s -= m[r][c] * x[c]
		}
		if m[r][r] == 0 {
			x[r] = 0
			continue
		}
		x[r] = s / m[r][r]
	}
	return x
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// SmoothSavGol applies a Savitzky-Golay filter of window w (forced odd)
// and polynomial order p to data, returning a new slice of the same
// length. Edge points (within half the window of either boundary) are
// passed through unsmoothed, the common convention for fixed-window SG
// filters.
func SmoothSavGol(data []float64, w, p int) []float64 {
	if w%2 == 0 {
		w++
	}
	if p > w-1 {
		p = w - 1
	}
	half := w / 2

	out := make([]float64, len(data))
	copy(out, data)

	if len(data) < w {
		return out
	}

	coeffs := savGolCoefficients(w, p)

	for i := half; i < len(data)-half; i++ {
		var s float64
		for k := 0; k < w; k++ {
			s += coeffs[k] * data[i-half+k]
		}
		out[i] = s
	}
	return out
}
