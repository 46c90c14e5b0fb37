package services

import (
	"fmt"
	"strings"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
	"github.com/renjie/prism-stops/pkg/core/services/recoders"
)

// YearRecoder 单一年份分区的字段统一
// 职责: 组合四个叶子 recoder, 生成按输入顺序排列的标准化记录
type YearRecoder struct {
	policy      domain.FormatPolicy
	fields      domain.RawFieldNames
	forcePrefix string
	observer    ports.Observer
}

// RecoderOption 定义配置选项函数
type RecoderOption func(*YearRecoder)

// WithFormatPolicy sets the year -> date format mapping.
func WithFormatPolicy(p domain.FormatPolicy) RecoderOption {
	return func(r *YearRecoder) {
		r.policy = p
	}
}

// WithRawFieldNames overrides the source column names.
func WithRawFieldNames(f domain.RawFieldNames) RecoderOption {
	return func(r *YearRecoder) {
		r.fields = f
	}
}

// WithForcePrefix sets the naming convention of force-indicator fields.
func WithForcePrefix(prefix string) RecoderOption {
	return func(r *YearRecoder) {
		if prefix != "" {
			r.forcePrefix = prefix
		}
	}
}

// WithRecoderObserver receives field degradations.
func WithRecoderObserver(o ports.Observer) RecoderOption {
	return func(r *YearRecoder) {
		if o != nil {
			r.observer = o
		}
	}
}

// NewYearRecoder 初始化 recoder, 默认使用上游格式历史 (2006 YMD, 其余 MDY)
func NewYearRecoder(opts ...RecoderOption) *YearRecoder {
	r := &YearRecoder{
		policy:      domain.DefaultFormatPolicy(),
		fields:      domain.DefaultRawFieldNames(),
		forcePrefix: recoders.DefaultForcePrefix,
		observer:    ports.NopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recode standardizes one partition. Output order equals input order and
// ids are "{year}-{i}" with i the 1-based input position. The only error is
// a year without a format policy.
func (r *YearRecoder) Recode(records []domain.RawRecord, year int) ([]domain.StandardRecord, error) {
	out, _, err := r.recodePartition(records, year)
	return out, err
}

// recodePartition is Recode that also returns the force fields it discovered.
func (r *YearRecoder) recodePartition(records []domain.RawRecord, year int) ([]domain.StandardRecord, []string, error) {
	// 1. 日期格式由分区年份决定, 不从数据推断
	format, err := r.policy.Resolve(year)
	if err != nil {
		return nil, nil, err
	}

	// 2. 本分区实际存在的 force 字段
	forceFields := recoders.DiscoverForceFields(records, r.forcePrefix)

	out := make([]domain.StandardRecord, len(records))
	for i, rec := range records {
		sr, err := r.recodeOne(rec, year, i+1, format, forceFields)
		if err != nil {
			return nil, nil, err
		}
		out[i] = sr
	}
	return out, forceFields, nil
}

func (r *YearRecoder) recodeOne(rec domain.RawRecord, year, ordinal int, format domain.DateFormat, forceFields []string) (domain.StandardRecord, error) {
	id := fmt.Sprintf("%d-%d", year, ordinal)
	sr := domain.StandardRecord{ID: id, Year: year}

	dateRaw, timeRaw := rec.Field(r.fields.Date), rec.Field(r.fields.Time)
	dt, err := recoders.ParseDateTime(dateRaw, timeRaw, format)
	if err != nil {
		return sr, err
	}
	sr.Date, sr.Time = dt.Date, dt.Time
	r.degrade(id, r.fields.Date, dateRaw, dt.DateReason)
	r.degrade(id, r.fields.Time, timeRaw, dt.TimeReason)

	raceRaw := rec.Field(r.fields.Race)
	sr.Race = recoders.RecodeRace(raceRaw)
	if sr.Race == nil && raceRaw.Present && raceRaw.Text != "" {
		r.degrade(id, r.fields.Race, raceRaw, domain.ReasonUnknownCode)
	}

	ageRaw := rec.Field(r.fields.Age)
	var reason domain.DegradationReason
	sr.Age, reason = recoders.CleanAge(ageRaw)
	r.degrade(id, r.fields.Age, ageRaw, reason)

	sr.PoliceForce = recoders.AggregateForce(rec, forceFields)

	if sex := rec.Field(r.fields.Sex); sex.Present {
		female := sex.Text == "F"
		sr.Female = &female
	}

	sr.Precinct = r.integer(id, r.fields.Precinct, rec.Field(r.fields.Precinct))
	sr.XCoord = r.numeric(id, r.fields.XCoord, rec.Field(r.fields.XCoord))
	sr.YCoord = r.numeric(id, r.fields.YCoord, rec.Field(r.fields.YCoord))
	return sr, nil
}

func (r *YearRecoder) integer(id, field string, raw domain.Field) *int {
	if !raw.Present || strings.TrimSpace(raw.Text) == "" {
		return nil
	}
	v, ok := recoders.ParseInteger(raw.Text)
	if !ok {
		r.degrade(id, field, raw, domain.ReasonUnparseable)
		return nil
	}
	return &v
}

func (r *YearRecoder) numeric(id, field string, raw domain.Field) *float64 {
	if !raw.Present || strings.TrimSpace(raw.Text) == "" {
		return nil
	}
	v, ok := recoders.ParseNumeric(raw.Text)
	if !ok {
		r.degrade(id, field, raw, domain.ReasonUnparseable)
		return nil
	}
	return &v
}

func (r *YearRecoder) degrade(id, field string, raw domain.Field, reason domain.DegradationReason) {
	if reason == "" {
		return
	}
	r.observer.ObserveDegradation(domain.Degradation{
		RecordID: id,
		Field:    field,
		Raw:      raw.Text,
		Reason:   reason,
	})
}
