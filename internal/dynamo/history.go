package dynamo

// Field is a T×L history arena. Rows share one backing slice and are
// addressed by time index.
type Field struct {
	data []float64
	rows int
	cols int
}

func NewField(rows, cols int) *Field {
	return &Field{data: make([]float64, rows*cols), rows: rows, cols: cols}
}

func (f *Field) Rows() int { return f.rows }
func (f *Field) Cols() int { return f.cols }

// Row returns row t as a slice into the arena. It panics if t is outside
// [0, Rows()).
func (f *Field) Row(t int) []float64 {
	if t < 0 || t >= f.rows {
		panic("dynamo: field row out of range")
	}
	return f.data[t*f.cols : (t+1)*f.cols : (t+1)*f.cols]
}

// At returns the value at time t, cell i.
func (f *Field) At(t, i int) float64 { return f.Row(t)[i] }

// Column returns cell i of rows [0, n) as a new slice.
func (f *Field) Column(i, n int) []float64 {
	if n > f.rows {
		n = f.rows
	}
	col := make([]float64, n)
	for t := range col {
		col[t] = f.data[t*f.cols+i]
	}
	return col
}

// Fill sets every element of row t to v.
func (f *Field) Fill(t int, v float64) {
	row := f.Row(t)
	for i := range row {
		row[i] = v
	}
}

// Zero clears the whole arena.
func (f *Field) Zero() {
	for i := range f.data {
		f.data[i] = 0
	}
}

// Clone returns an independent copy.
func (f *Field) Clone() *Field {
	c := NewField(f.rows, f.cols)
	copy(c.data, f.data)
	return c
}

// Series is a length-T history of a scalar.
type Series []float64

func (s Series) Zero() {
	for i := range s {
		s[i] = 0
	}
}

func (s Series) Clone() Series {
	c := make(Series, len(s))
	copy(c, s)
	return c
}
