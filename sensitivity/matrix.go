package sensitivity

import (
	"fmt"
	"strings"
)

// Matrix is a dense row-major matrix indexed [dependent, independent].
// Zero-dimension matrices are well formed.
type Matrix struct {
	Rows int
	Cols int
	data []float64
}

// NewMatrix returns a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, data: make([]float64, rows*cols)}
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.Cols+j]
}

// Set writes the element at row i, column j.
func (m *Matrix) Set(i, j int, v float64) {
	m.data[i*m.Cols+j] = v
}

// Col copies column j into a contiguous slice. The storage is row major,
// so columns are strided views; native calls always receive the copy.
func (m *Matrix) Col(j int) []float64 {
	out := make([]float64, m.Rows)
	for i := range out {
		out[i] = m.data[i*m.Cols+j]
	}
	return out
}

// SetCol copies a contiguous column back into the strided storage.
func (m *Matrix) SetCol(j int, col []float64) {
	for i, v := range col {
		m.data[i*m.Cols+j] = v
	}
}

// Data exposes the backing slice in row-major order.
func (m *Matrix) Data() []float64 {
	return m.data
}

func (m *Matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%12.6g", m.At(i, j))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
