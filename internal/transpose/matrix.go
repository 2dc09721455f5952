package transpose

// Window is the number of pending indices per row before a row is flushed.
const Window = 256

// FlushFunc receives a full or final row. idx is ascending and only valid
// for the duration of the call.
type FlushFunc func(row int, idx []uint32)

// Matrix is a fixed-row accumulator of element indices, one row per bit
// plane.
type Matrix struct {
	cells  []uint32
	lens   []int
	rows   int
	window int
	flush  FlushFunc
}

// NewMatrix creates a matrix with the given number of rows and row width.
// A window <= 0 selects the default Window.
func NewMatrix(rows, window int, flush FlushFunc) *Matrix {
	if window <= 0 {
		window = Window
	}
	return &Matrix{
		cells:  make([]uint32, rows*window),
		lens:   make([]int, rows),
		rows:   rows,
		window: window,
		flush:  flush,
	}
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	return m.rows
}

// Row returns the pending entries of row r.
func (m *Matrix) Row(r int) []uint32 {
	base := r * m.window
	return m.cells[base : base+m.lens[r]]
}

// Add appends idx to row r, flushing the row once it reaches the window.
func (m *Matrix) Add(r int, idx uint32) {
	base := r * m.window
	n := m.lens[r]
	m.cells[base+n] = idx
	n++
	if n == m.window {
		m.flush(r, m.cells[base:base+n])
		n = 0
	}
	m.lens[r] = n
}

// AddValue bit-scans v and appends idx to the row of every set bit.
func (m *Matrix) AddValue(v uint64, idx uint32) {
	var positions [64]uint8
	n := BitScan(v, positions[:])
	for _, p := range positions[:n] {
		m.Add(int(p), idx)
	}
}

// Flush hands every non-empty row to the flush callback and resets it.
func (m *Matrix) Flush() {
	for r := 0; r < m.rows; r++ {
		if m.lens[r] == 0 {
			continue
		}
		m.flush(r, m.Row(r))
		m.lens[r] = 0
	}
}
