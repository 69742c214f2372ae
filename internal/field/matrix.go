package field

import "fmt"

// Matrix is a dense row-major matrix over a prime field.
type Matrix struct {
	f    *Field
	rows int
	cols int
	data []uint64
}

// NewMatrix returns the rows×cols zero matrix over f.
func NewMatrix(f *Field, rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("field: negative matrix shape %dx%d", rows, cols))
	}
	return &Matrix{
		f:    f,
		rows: rows,
		cols: cols,
		data: make([]uint64, rows*cols),
	}
}

// Diagonal returns the square matrix with the given diagonal entries.
func Diagonal(f *Field, entries []uint64) *Matrix {
	m := NewMatrix(f, len(entries), len(entries))
	for i, e := range entries {
		m.Set(i, i, e)
	}
	return m
}

// Identity returns the n×n identity matrix over f.
func Identity(f *Field, n int) *Matrix {
	m := NewMatrix(f, n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1%f.q)
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Field returns the field the entries live in.
func (m *Matrix) Field() *Field { return m.f }

// At returns the entry at (i, j). Panics when out of range.
func (m *Matrix) At(i, j int) uint64 {
	m.check(i, j)
	return m.data[i*m.cols+j]
}

// Set stores v mod q at (i, j). Panics when out of range.
func (m *Matrix) Set(i, j int, v uint64) {
	m.check(i, j)
	m.data[i*m.cols+j] = v % m.f.q
}

func (m *Matrix) check(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("field: index (%d,%d) out of range %dx%d", i, j, m.rows, m.cols))
	}
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []uint64 {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("field: row %d out of range [0,%d)", i, m.rows))
	}
	out := make([]uint64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	out := NewMatrix(m.f, m.rows, m.cols)
	copy(out.data, m.data)
	return out
}

// Mul returns m * other. The operands must share a field and have
// compatible shapes.
func (m *Matrix) Mul(other *Matrix) (*Matrix, error) {
	if m.f.q != other.f.q {
		return nil, fmt.Errorf("field: matrix field mismatch: %d vs %d", m.f.q, other.f.q)
	}
	if m.cols != other.rows {
		return nil, fmt.Errorf("field: matrix shape mismatch: %dx%d * %dx%d", m.rows, m.cols, other.rows, other.cols)
	}
	out := NewMatrix(m.f, m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}
			for j := 0; j < other.cols; j++ {
				b := other.data[k*other.cols+j]
				if b == 0 {
					continue
				}
				idx := i*out.cols + j
				out.data[idx] = m.f.Add(out.data[idx], m.f.Mul(a, b))
			}
		}
	}
	return out, nil
}

// MulVec returns m * v for a column vector v of length Cols.
func (m *Matrix) MulVec(v []uint64) ([]uint64, error) {
	if len(v) != m.cols {
		return nil, fmt.Errorf("field: vector length %d does not match %d columns", len(v), m.cols)
	}
	out := make([]uint64, m.rows)
	for i := 0; i < m.rows; i++ {
		acc := uint64(0)
		for j := 0; j < m.cols; j++ {
			acc = m.f.Add(acc, m.f.Mul(m.data[i*m.cols+j], v[j]))
		}
		out[i] = acc
	}
	return out, nil
}

// Transpose returns the transpose of m.
func (m *Matrix) Transpose() *Matrix {
	out := NewMatrix(m.f, m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*out.cols+i] = m.data[i*m.cols+j]
		}
	}
	return out
}

// NullSpace returns a basis for {x : m*x = 0} as column vectors of length
// Cols. The basis is empty when the kernel is trivial. The receiver is not
// modified.
func (m *Matrix) NullSpace() [][]uint64 {
	work := m.Clone()
	pivotCols := work.reduce()

	isPivot := make([]bool, work.cols)
	for _, c := range pivotCols {
		isPivot[c] = true
	}

	basis := make([][]uint64, 0, work.cols-len(pivotCols))
	for free := 0; free < work.cols; free++ {
		if isPivot[free] {
			continue
		}
		vec := make([]uint64, work.cols)
		vec[free] = 1 % work.f.q
		// In RREF each pivot row reads x_pivot + sum(coeff * x_free) = 0,
		// so x_pivot = -coeff for the one free variable set to 1.
		for r, c := range pivotCols {
			vec[c] = work.f.Neg(work.data[r*work.cols+free])
		}
		basis = append(basis, vec)
	}
	return basis
}

// reduce brings the matrix to reduced row echelon form in place and returns
// the pivot column of each nonzero row, in row order.
func (m *Matrix) reduce() []int {
	pivotCols := make([]int, 0, m.rows)
	row := 0
	for col := 0; col < m.cols && row < m.rows; col++ {
		pivot := -1
		for r := row; r < m.rows; r++ {
			if m.data[r*m.cols+col] != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			continue
		}
		m.swapRows(row, pivot)
		inv := m.f.Inv(m.data[row*m.cols+col])
		m.scaleRow(row, inv)
		for r := 0; r < m.rows; r++ {
			if r == row {
				continue
			}
			factor := m.data[r*m.cols+col]
			if factor != 0 {
				m.addScaledRow(r, row, m.f.Neg(factor))
			}
		}
		pivotCols = append(pivotCols, col)
		row++
	}
	return pivotCols
}

func (m *Matrix) swapRows(a, b int) {
	if a == b {
		return
	}
	ra := m.data[a*m.cols : (a+1)*m.cols]
	rb := m.data[b*m.cols : (b+1)*m.cols]
	for i := range ra {
		ra[i], rb[i] = rb[i], ra[i]
	}
}

func (m *Matrix) scaleRow(r int, c uint64) {
	row := m.data[r*m.cols : (r+1)*m.cols]
	for i := range row {
		row[i] = m.f.Mul(row[i], c)
	}
}

// addScaledRow adds c times row src to row dst.
func (m *Matrix) addScaledRow(dst, src int, c uint64) {
	rd := m.data[dst*m.cols : (dst+1)*m.cols]
	rs := m.data[src*m.cols : (src+1)*m.cols]
	for i := range rd {
		rd[i] = m.f.Add(rd[i], m.f.Mul(c, rs[i]))
	}
}
