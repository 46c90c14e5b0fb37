package domain

import "time"

// ColumnKind 定义列的逻辑类型
type ColumnKind string

const (
	KindText      ColumnKind = "TEXT"      // string
	KindInteger   ColumnKind = "INTEGER"   // int64
	KindNumeric   ColumnKind = "NUMERIC"   // float64
	KindBoolean   ColumnKind = "BOOLEAN"   // bool
	KindDate      ColumnKind = "DATE"      // time.Time (UTC midnight)
	KindTimestamp ColumnKind = "TIMESTAMP" // time.Time
	KindCategory  ColumnKind = "CATEGORY"  // string, one of Levels
)

// Standard column names, in table order.
const (
	ColID          = "id"
	ColDate        = "date"
	ColTime        = "time"
	ColYear        = "year"
	ColRace        = "race"
	ColFemale      = "female"
	ColAge         = "age"
	ColPoliceForce = "police_force"
	ColPrecinct    = "precinct"
	ColXCoord      = "xcoord"
	ColYCoord      = "ycoord"
)

// ColumnSchema describes one column without its values.
type ColumnSchema struct {
	Name   string     `json:"name"`
	Kind   ColumnKind `json:"kind"`
	Levels []string   `json:"levels,omitempty"`
}

// StandardSchema returns the schema of the standardized table.
func StandardSchema() []ColumnSchema {
	return []ColumnSchema{
		{Name: ColID, Kind: KindText},
		{Name: ColDate, Kind: KindDate},
		{Name: ColTime, Kind: KindTimestamp},
		{Name: ColYear, Kind: KindInteger},
		{Name: ColRace, Kind: KindCategory, Levels: RaceLevels()},
		{Name: ColFemale, Kind: KindBoolean},
		{Name: ColAge, Kind: KindInteger},
		{Name: ColPoliceForce, Kind: KindBoolean},
		{Name: ColPrecinct, Kind: KindInteger},
		{Name: ColXCoord, Kind: KindNumeric},
		{Name: ColYCoord, Kind: KindNumeric},
	}
}

// StandardColumnNames returns the required column names in order.
func StandardColumnNames() []string {
	schema := StandardSchema()
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.Name
	}
	return names
}

// Column is a named, typed vector. A nil value is missing.
type Column struct {
	ColumnSchema
	Values []any
}

// Missing counts nil values.
func (c *Column) Missing() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// MissingRate is Missing over the column length; an empty column has rate 0.
func (c *Column) MissingRate() float64 {
	if len(c.Values) == 0 {
		return 0
	}
	return float64(c.Missing()) / float64(len(c.Values))
}

// Table is an ordered set of equally long columns.
type Table struct {
	columns []*Column
	index   map[string]int
}

// NewEmptyTable builds a table from columns; later columns win on name clashes.
func NewEmptyTable(columns ...*Column) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// AddColumn appends c, or replaces an existing column of the same name.
func (t *Table) AddColumn(c *Column) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[c.Name]; ok {
		t.columns[i] = c
		return
	}
	t.index[c.Name] = len(t.columns)
	t.columns = append(t.columns, c)
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Column {
	return t.columns
}

// RowCount is the length of the first column.
func (t *Table) RowCount() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0].Values)
}

// ColumnCount is the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// NewTable converts standardized records into a typed table in StandardSchema order.
func NewTable(records []StandardRecord) *Table {
	schema := StandardSchema()
	cols := make([]*Column, len(schema))
	for i, s := range schema {
		cols[i] = &Column{ColumnSchema: s, Values: make([]any, len(records))}
	}

	for row, r := range records {
		vals := []any{
			r.ID,
			timeOrNil(r.Date),
			timeOrNil(r.Time),
			int64(r.Year),
			nil,
			nil,
			intOrNil(r.Age),
			r.PoliceForce,
			intOrNil(r.Precinct),
			floatOrNil(r.XCoord),
			floatOrNil(r.YCoord),
		}
		if r.Race != nil {
			vals[4] = string(*r.Race)
		}
		if r.Female != nil {
			vals[5] = *r.Female
		}
		for i := range cols {
			cols[i].Values[row] = vals[i]
		}
	}
	return NewEmptyTable(cols...)
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
