package domain

import "time"

// RawRecord 代表一条原始拦停记录
// 所有字段均为文本; 字段缺失 (不在 Fields 中) 即视为 missing
type RawRecord struct {
	Fields     map[string]string `json:"fields"`
	SourceYear int               `json:"source_year"` // 来源分区年份
}

// Race is the canonical race category of a standardized record.
type Race string

const (
	RaceWhite    Race = "White"
	RaceBlack    Race = "Black"
	RaceHispanic Race = "Hispanic"
	RaceAsian    Race = "Asian"
	RaceOther    Race = "Other"
)

// RaceLevels lists the canonical categories in declaration order.
func RaceLevels() []string {
	return []string{
		string(RaceWhite),
		string(RaceBlack),
		string(RaceHispanic),
		string(RaceAsian),
		string(RaceOther),
	}
}

// StandardRecord 标准化后的拦停记录 (输出单元)
// 指针字段为 nil 表示 missing
type StandardRecord struct {
	ID          string     `json:"id"`   // "{year}-{ordinal}"
	Date        *time.Time `json:"date"` // UTC 零点
	Time        *time.Time `json:"time"` // 分钟精度
	Year        int        `json:"year"` // 分区年份, 与 Date 是否解析成功无关
	Race        *Race      `json:"race"`
	Female      *bool      `json:"female"`
	Age         *int       `json:"age"`
	PoliceForce bool       `json:"police_force"` // 永不缺失
	Precinct    *int       `json:"precinct"`
	XCoord      *float64   `json:"xcoord"`
	YCoord      *float64   `json:"ycoord"`
}

// Field is a raw text value that may be missing.
type Field struct {
	Text    string
	Present bool
}

// Text wraps a present raw value.
func Text(s string) Field {
	return Field{Text: s, Present: true}
}

// Field returns the named raw value; absent fields are missing.
func (r RawRecord) Field(name string) Field {
	v, ok := r.Fields[name]
	return Field{Text: v, Present: ok}
}

// FieldNames lists the field names of the record in no particular order.
func (r RawRecord) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	return names
}

// RawFieldNames names the source columns the recoder reads.
type RawFieldNames struct {
	Date     string `yaml:"date"`
	Time     string `yaml:"time"`
	Race     string `yaml:"race"`
	Sex      string `yaml:"sex"`
	Age      string `yaml:"age"`
	Precinct string `yaml:"precinct"`
	XCoord   string `yaml:"xcoord"`
	YCoord   string `yaml:"ycoord"`
}

// DefaultRawFieldNames returns the column names used by the stop files.
func DefaultRawFieldNames() RawFieldNames {
	return RawFieldNames{
		Date:     "datestop",
		Time:     "timestop",
		Race:     "race",
		Sex:      "sex",
		Age:      "age",
		Precinct: "pct",
		XCoord:   "xcoord",
		YCoord:   "ycoord",
	}
}
