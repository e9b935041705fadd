package fits

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/robert-malhotra/go-afw/internal/dtype"
	"github.com/robert-malhotra/go-afw/internal/heap"
)

// Element is the set of types table cells can be read into and written
// from.
type Element interface {
	bool | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 |
		float32 | float64 | complex64 | complex128 | string | Angle
}

var (
	errNotTable    = errors.New("HDU is not a table")
	errNotBinary   = errors.New("HDU is an ASCII table")
	errNoTform     = errors.New("missing TFORM keyword")
	errBadTfields  = errors.New("illegal TFIELDS value")
	errNegRows     = errors.New("negative number of rows")
	errRowWidth    = errors.New("column widths do not add up to NAXIS1")
	errRowRange    = errors.New("row outside table")
	errElemRange   = errors.New("element count outside cell")
	errNotVarLen   = errors.New("column is not variable length")
	errNotLogical  = errors.New("column does not hold logical values")
	errColNotFound = errors.New("column not found")
)

// column is one binary table column.
type column struct {
	name   string
	unit   string
	format dtype.Format
	offset int64   // Byte offset of the cell within a row
	zero   float64 // TZEROn, or the offset implied by the TFORM code
}

// tableLayout is the parsed structure of a binary table header.
type tableLayout struct {
	width int64
	rows  int64
	cols  []column
}

// table parses the binary table structure of the HDU, caching it until
// the header changes.
func (h *hdu) table() (*tableLayout, error) {
	if h.layout != nil {
		return h.layout, nil
	}
	kind, err := h.kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case ImageHDU:
		return nil, errNotTable
	case ASCIITableHDU:
		return nil, errNotBinary
	}

	width, _, err := h.intKey("NAXIS1")
	if err != nil {
		return nil, err
	}
	rows, _, err := h.intKey("NAXIS2")
	if err != nil {
		return nil, err
	}
	if rows < 0 {
		return nil, fmt.Errorf("%w: %d", errNegRows, rows)
	}
	n, ok, err := h.intKey("TFIELDS")
	if err != nil || !ok || n < 0 || n > 999 {
		return nil, fmt.Errorf("%w: %d", errBadTfields, n)
	}

	t := &tableLayout{width: width, rows: rows}
	var offset int64
	for i := 1; i <= int(n); i++ {
		tform, ok := h.stringKey(fmt.Sprintf("TFORM%d", i))
		if !ok {
			return nil, fmt.Errorf("%w: TFORM%d", errNoTform, i)
		}
		format, err := dtype.ParseFormat(tform)
		if err != nil {
			return nil, fmt.Errorf("TFORM%d: %w", i, err)
		}
		c := column{format: format, offset: offset, zero: format.Zero}
		c.name, _ = h.stringKey(fmt.Sprintf("TTYPE%d", i))
		c.unit, _ = h.stringKey(fmt.Sprintf("TUNIT%d", i))
		if z, ok, err := h.floatKey(fmt.Sprintf("TZERO%d", i)); err != nil {
			return nil, err
		} else if ok {
			c.zero = z
		}
		t.cols = append(t.cols, c)
		offset += format.Width()
	}
	if offset != width {
		return nil, fmt.Errorf("%w: %d != %d", errRowWidth, offset, width)
	}
	if int64(len(h.data)) < width*rows {
		return nil, fmt.Errorf("%w: %d rows of %d bytes", errRowRange, rows, width)
	}
	h.layout = t
	return t, nil
}

// cell returns the bytes of one table cell.
func (h *hdu) cell(t *tableLayout, row int64, c column) []byte {
	start := row*t.width + c.offset
	return h.data[start : start+c.format.Width()]
}

// addColumnCards appends the TTYPEn, TFORMn and TZEROn cards for column i.
func (h *hdu) addColumnCards(i int, name string, format dtype.Format, comment string) error {
	if name != "" {
		if comment == "" {
			comment = fmt.Sprintf("label for field %3d", i+1)
		}
		if err := h.write(columnKey("TTYPE", i), name, comment); err != nil {
			return err
		}
	}
	if err := h.write(columnKey("TFORM", i), format.String(), fmt.Sprintf("data format of field %d", i+1)); err != nil {
		return err
	}
	switch format.Zero {
	case 0:
		return nil
	case dtype.ZeroUint64:
		return h.write(columnKey("TZERO", i), uint64(1<<63), "offset for unsigned integers")
	default:
		return h.write(columnKey("TZERO", i), int64(format.Zero), "offset for unsigned integers")
	}
}

// tableHDU returns the current HDU and its table layout.
func (f *Fits) tableHDU() (*hdu, *tableLayout, error) {
	h, err := f.current(false)
	if err != nil {
		return nil, nil, err
	}
	t, err := h.table()
	if err != nil {
		return nil, nil, f.fail(statusFor(err, StatusNotTable), err, "")
	}
	return h, t, nil
}

// column returns column col (0-based) of the current table.
func (f *Fits) column(col int) (*hdu, *tableLayout, column, error) {
	h, t, err := f.tableHDU()
	if err != nil {
		return nil, nil, column{}, err
	}
	if col < 0 || col >= len(t.cols) {
		return nil, nil, column{}, f.fail(StatusBadColNum, nil, "column %d requested, table has %d", col, len(t.cols))
	}
	return h, t, t.cols[col], nil
}

// CreateTable appends a binary table HDU with the given columns and
// makes it current. An empty file first gets a primary HDU.
func (f *Fits) CreateTable(nRows int64, ttype, tform []string, extName string) error {
	if err := f.checkWrite(); err != nil {
		return err
	}
	if nRows < 0 {
		return f.fail(StatusNegRows, nil, "creating table with %d rows", nRows)
	}
	if len(ttype) > len(tform) {
		return f.fail(StatusBadTfields, nil, "%d column names for %d formats", len(ttype), len(tform))
	}

	formats := make([]dtype.Format, len(tform))
	var width int64
	for i, s := range tform {
		format, err := dtype.ParseFormat(s)
		if err != nil {
			return f.fail(statusFor(err, StatusBadTform), err, "TFORM%d", i+1)
		}
		formats[i] = format
		width += format.Width()
	}

	h := &hdu{data: make([]byte, width*nRows), heap: heap.New(nil)}
	h.append(
		fixedCard("XTENSION", "BINTABLE", "binary table extension"),
		fixedCard("BITPIX", 8, "8-bit bytes"),
		fixedCard("NAXIS", 2, "2-dimensional binary table"),
		fixedCard("NAXIS1", width, "width of table in bytes"),
		fixedCard("NAXIS2", nRows, "number of rows in table"),
		fixedCard("PCOUNT", 0, "size of special data area"),
		fixedCard("GCOUNT", 1, "one data group (required keyword)"),
		fixedCard("TFIELDS", len(formats), "number of fields in each row"),
	)
	for i, format := range formats {
		name := ""
		if i < len(ttype) {
			name = ttype[i]
		}
		if err := h.addColumnCards(i, name, format, ""); err != nil {
			return f.fail(statusFor(err, StatusBadKeychar), err, "column %d", i)
		}
	}
	if extName != "" {
		if err := h.write("EXTNAME", extName, "name of this binary table extension"); err != nil {
			return f.fail(statusFor(err, StatusBadKeychar), err, "")
		}
	}

	if len(f.hdus) == 0 {
		f.hdus = append(f.hdus, newPrimary())
	}
	f.hdus = append(f.hdus, h)
	f.cur = len(f.hdus) - 1
	f.touch()
	return nil
}

// MakeColumnFormat returns the TFORM value for a column of T. A positive
// size is a fixed element count, a negative size a variable-length column
// holding at most -size elements, and zero a variable-length column with
// no declared maximum.
func MakeColumnFormat[T Element](size int) string {
	// Every Element type has a code.
	_, letter, _, _ := dtype.CodeFor(reflect.TypeFor[T]())
	switch {
	case size > 0:
		return fmt.Sprintf("%d%c", size, letter)
	case size < 0:
		return fmt.Sprintf("1P%c(%d)", letter, -size)
	}
	return fmt.Sprintf("1P%c", letter)
}

// AddColumn appends a column of T to the current table and returns its
// 0-based index. Existing rows are widened with zeroed cells. A non-empty
// comment is recorded on the TTYPEn card.
func AddColumn[T Element](f *Fits, ttype string, size int, comment string) (int, error) {
	if err := f.checkWrite(); err != nil {
		return 0, err
	}
	h, t, err := f.tableHDU()
	if err != nil {
		return 0, err
	}
	format, err := dtype.ParseFormat(MakeColumnFormat[T](size))
	if err != nil {
		return 0, f.fail(statusFor(err, StatusBadTform), err, "adding column %q", ttype)
	}

	n := len(t.cols)
	width := t.width + format.Width()
	data := make([]byte, width*t.rows)
	for r := int64(0); r < t.rows; r++ {
		copy(data[r*width:], h.data[r*t.width:(r+1)*t.width])
	}
	h.data = data

	if err := h.update("NAXIS1", width, ""); err != nil {
		return 0, f.fail(StatusWriteError, err, "")
	}
	if err := h.update("TFIELDS", n+1, ""); err != nil {
		return 0, f.fail(StatusWriteError, err, "")
	}
	if err := h.addColumnCards(n, ttype, format, comment); err != nil {
		return 0, f.fail(statusFor(err, StatusBadKeychar), err, "adding column %q", ttype)
	}
	f.touch()
	return n, nil
}

// AddRows appends n zeroed rows to the current table and returns the
// index of the first new row.
func (f *Fits) AddRows(n int64) (int64, error) {
	if err := f.checkWrite(); err != nil {
		return 0, err
	}
	h, t, err := f.tableHDU()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, f.fail(StatusNegRows, nil, "adding %d rows", n)
	}
	first := t.rows
	if err := h.resize(t, first+n); err != nil {
		return 0, f.fail(StatusWriteError, err, "")
	}
	f.touch()
	return first, nil
}

// resize grows the table to rows rows.
func (h *hdu) resize(t *tableLayout, rows int64) error {
	h.data = append(h.data, make([]byte, (rows-t.rows)*t.width)...)
	return h.update("NAXIS2", rows, "")
}

// CountRows returns the number of rows in the current table.
func (f *Fits) CountRows() (int64, error) {
	_, t, err := f.tableHDU()
	if err != nil {
		return 0, err
	}
	return t.rows, nil
}

// ColumnInfo describes a table column.
type ColumnInfo struct {
	Name   string
	Unit   string
	Format string // TFORM value
	Repeat int64  // Elements per cell, or the declared maximum for variable-length columns
	VarLen bool
}

// Columns describes the columns of the current table.
func (f *Fits) Columns() ([]ColumnInfo, error) {
	_, t, err := f.tableHDU()
	if err != nil {
		return nil, err
	}
	return t.columnInfo(), nil
}

func (t *tableLayout) columnInfo() []ColumnInfo {
	infos := make([]ColumnInfo, len(t.cols))
	for i, c := range t.cols {
		infos[i] = ColumnInfo{
			Name:   c.name,
			Unit:   c.unit,
			Format: c.format.String(),
			Repeat: c.arraySize(),
			VarLen: c.format.VarLen(),
		}
	}
	return infos
}

// arraySize returns the repeat count, or the declared maximum (0 when
// absent) for variable-length columns.
func (c column) arraySize() int64 {
	if !c.format.VarLen() {
		return c.format.Repeat
	}
	return max(c.format.Max, 0)
}

// FindColumn returns the 0-based index of the column named name.
// Names compare case-insensitively.
func (f *Fits) FindColumn(name string) (int, error) {
	_, t, err := f.tableHDU()
	if err != nil {
		return 0, err
	}
	for i, c := range t.cols {
		if strings.EqualFold(c.name, name) {
			return i, nil
		}
	}
	return 0, f.fail(StatusColNotFound, errColNotFound, "column %q", name)
}

// GetTableArraySize returns the number of elements in each cell of
// column col. Variable-length columns report their declared maximum, or
// 0 when none was declared.
func (f *Fits) GetTableArraySize(col int) (int64, error) {
	_, _, c, err := f.column(col)
	if err != nil {
		return 0, err
	}
	return c.arraySize(), nil
}

// GetTableRowArraySize returns the number of elements stored in the
// variable-length cell at row, col.
func (f *Fits) GetTableRowArraySize(row int64, col int) (int64, error) {
	h, t, c, err := f.column(col)
	if err != nil {
		return 0, err
	}
	if !c.format.VarLen() {
		return 0, f.fail(StatusNotVariLen, errNotVarLen, "column %d", col)
	}
	if row < 0 || row >= t.rows {
		return 0, f.fail(StatusBadRowNum, errRowRange, "row %d of %d", row, t.rows)
	}
	d, err := heap.ParseDescriptor(h.cell(t, row, c), c.format.Desc == dtype.DescQ)
	if err != nil {
		return 0, f.fail(StatusReadError, err, "")
	}
	return d.Count, nil
}

// checkKind reports whether values of type t can be stored in a column
// of the given code.
func checkKind(code dtype.Code, t reflect.Type) error {
	switch t.Kind() {
	case reflect.Bool:
		if code != dtype.Bit && code != dtype.Logical {
			return fmt.Errorf("%w: bool values in %q column", errNotLogical, rune(code))
		}
	case reflect.String:
		if code != dtype.Char {
			return fmt.Errorf("%w: string values in %q column", dtype.ErrTypeMismatch, rune(code))
		}
	default:
		if !code.IsNumeric() {
			return fmt.Errorf("%w: %v values in %q column", dtype.ErrTypeMismatch, t, rune(code))
		}
	}
	return nil
}

// WriteTableArray writes values into the cell at row, col. The table is
// extended when row is past the last row. Fixed columns accept at most
// their repeat count of elements; variable-length columns store the
// values in the heap. String columns take exactly one value.
func WriteTableArray[T Element](f *Fits, row int64, col int, values []T) error {
	if err := f.checkWrite(); err != nil {
		return err
	}
	h, t, c, err := f.column(col)
	if err != nil {
		return err
	}
	if row < 0 {
		return f.fail(StatusBadRowNum, errRowRange, "row %d", row)
	}
	if err := checkKind(c.format.Code, reflect.TypeFor[T]()); err != nil {
		return f.fail(statusFor(err, StatusBadDatatype), err, "column %d", col)
	}
	vals, err := canonical(values)
	if err != nil {
		return f.fail(statusFor(err, StatusBadDatatype), err, "column %d", col)
	}

	if row >= t.rows {
		if err := h.resize(t, row+1); err != nil {
			return f.fail(StatusWriteError, err, "")
		}
	}
	cell := h.cell(t, row, c)
	if c.format.VarLen() {
		err = writeVarCell(h, c, cell, vals)
	} else {
		err = writeFixedCell(c, cell, vals)
	}
	if err != nil {
		return f.fail(statusFor(err, StatusWriteError), err, "writing row %d column %d", row, col)
	}
	f.touch()
	return nil
}

func canonical[T Element](values []T) ([]any, error) {
	vals := make([]any, len(values))
	for i := range values {
		v, err := dtype.Canonical(reflect.ValueOf(values[i]))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func oneString(vals []any) (string, error) {
	if len(vals) != 1 {
		return "", fmt.Errorf("%w: string cells take one value, got %d", dtype.ErrTypeMismatch, len(vals))
	}
	return vals[0].(string), nil
}

func writeFixedCell(c column, cell []byte, vals []any) error {
	if c.format.Code == dtype.Char {
		s, err := oneString(vals)
		if err != nil {
			return err
		}
		if int64(len(s)) > c.format.Repeat {
			return fmt.Errorf("%w: %d characters in %d character cell", errElemRange, len(s), c.format.Repeat)
		}
		return dtype.Encode(dtype.Char, 0, vals, cell)
	}
	if int64(len(vals)) > c.format.Repeat {
		return fmt.Errorf("%w: %d elements in %d element cell", errElemRange, len(vals), c.format.Repeat)
	}
	return dtype.Encode(c.format.Code, c.zero, vals, cell)
}

func writeVarCell(h *hdu, c column, cell []byte, vals []any) error {
	long := c.format.Desc == dtype.DescQ
	code := c.format.Code
	old, err := heap.ParseDescriptor(cell, long)
	if err != nil {
		return err
	}

	var payload []byte
	var count int64
	if code == dtype.Char {
		s, err := oneString(vals)
		if err != nil {
			return err
		}
		payload, count = []byte(s), int64(len(s))
	} else {
		count = int64(len(vals))
		payload = make([]byte, code.Bytes(count))
		if err := dtype.Encode(code, c.zero, vals, payload); err != nil {
			return err
		}
	}
	if c.format.Max >= 0 && count > c.format.Max {
		return fmt.Errorf("%w: %d elements, column maximum is %d", errElemRange, count, c.format.Max)
	}

	d, err := h.heap.Store(old, code.Bytes(old.Count), payload, count)
	if err != nil {
		return err
	}
	return heap.PutDescriptor(cell, d, long)
}

// ReadTableArray reads len(values) elements from the cell at row, col.
// String columns take exactly one value.
func ReadTableArray[T Element](f *Fits, row int64, col int, values []T) error {
	h, t, c, err := f.column(col)
	if err != nil {
		return err
	}
	if row < 0 || row >= t.rows {
		return f.fail(StatusBadRowNum, errRowRange, "row %d of %d", row, t.rows)
	}
	if err := checkKind(c.format.Code, reflect.TypeFor[T]()); err != nil {
		return f.fail(statusFor(err, StatusBadDatatype), err, "column %d", col)
	}

	data, err := readCell(h, c, h.cell(t, row, c), len(values))
	if err != nil {
		return f.fail(statusFor(err, StatusReadError), err, "reading row %d column %d", row, col)
	}
	decoded, err := dtype.Decode(c.format.Code, c.zero, data, len(values))
	if err != nil {
		return f.fail(statusFor(err, StatusReadError), err, "reading row %d column %d", row, col)
	}
	for i := range values {
		if err := dtype.Assign(reflect.ValueOf(&values[i]).Elem(), decoded[i]); err != nil {
			return f.fail(statusFor(err, StatusBadDatatype), err, "reading row %d column %d", row, col)
		}
	}
	return nil
}

// readCell returns the bytes holding n elements of a cell, loading
// variable-length arrays from the heap.
func readCell(h *hdu, c column, cell []byte, n int) ([]byte, error) {
	code := c.format.Code
	if code == dtype.Char && n != 1 {
		return nil, fmt.Errorf("%w: string cells take one value, got %d", dtype.ErrTypeMismatch, n)
	}
	if !c.format.VarLen() {
		if code != dtype.Char && int64(n) > c.format.Repeat {
			return nil, fmt.Errorf("%w: %d elements from %d element cell", errElemRange, n, c.format.Repeat)
		}
		return cell, nil
	}

	d, err := heap.ParseDescriptor(cell, c.format.Desc == dtype.DescQ)
	if err != nil {
		return nil, err
	}
	if code == dtype.Char {
		return h.heap.Load(d, d.Count)
	}
	if int64(n) > d.Count {
		return nil, fmt.Errorf("%w: %d elements from cell holding %d", errElemRange, n, d.Count)
	}
	return h.heap.Load(d, code.Bytes(int64(n)))
}

// WriteTableScalar writes a single value into the cell at row, col.
func WriteTableScalar[T Element](f *Fits, row int64, col int, value T) error {
	return WriteTableArray(f, row, col, []T{value})
}

// ReadTableScalar reads the first element of the cell at row, col.
func ReadTableScalar[T Element](f *Fits, row int64, col int) (T, error) {
	values := make([]T, 1)
	err := ReadTableArray(f, row, col, values)
	return values[0], err
}
