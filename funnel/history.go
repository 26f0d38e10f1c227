package funnel

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/hubspot_pipeline/utils"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCreateDate  = errors.New("invalid create date")
	ErrInvalidOffsetRange = errors.New("invalid stage offset range")
)

// Builder expands a sampled path into dated stage rows.
type Builder struct {
	rnd       Rand
	minOffset int
	maxOffset int
	pipeline  string
}

// NewBuilder returns a builder drawing per-stage offsets uniformly from
// [minOffset, maxOffset] days. minOffset must be at least 1 so entered dates
// strictly increase.
func NewBuilder(rnd Rand, minOffset, maxOffset int) (*Builder, error) {
	if minOffset < 1 || maxOffset < minOffset {
		return nil, fmt.Errorf("%w: [%d,%d]", ErrInvalidOffsetRange, minOffset, maxOffset)
	}
	return &Builder{
		rnd:       rnd,
		minOffset: minOffset,
		maxOffset: maxOffset,
		pipeline:  DefaultPipeline,
	}, nil
}

// ParseCreateDate reads the YYYY-MM-DD prefix of a CRM timestamp such as
// "2024-01-01T09:30:00.000Z".
func ParseCreateDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidCreateDate, raw)
	}
	return t, nil
}

// Forecast returns round(amount × probability, 2). An empty or unparseable
// amount yields an invalid NullDecimal instead of an error.
func Forecast(amount string, probability float64) decimal.NullDecimal {
	d, err := utils.ParseDecimal(amount)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: d.Mul(decimal.NewFromFloat(probability)).Round(2),
		Valid:   true,
	}
}

func (b *Builder) offset() int {
	return b.minOffset + b.rnd.IntN(b.maxOffset-b.minOffset+1)
}

// Build returns one row per stage in path. Ids, owner and deal type are left
// for the caller. An unparseable createdAt returns no rows and
// ErrInvalidCreateDate, which callers treat as a per-deal skip.
func (b *Builder) Build(path Path, createdAt string, amount string) ([]StageRow, error) {
	created, err := ParseCreateDate(createdAt)
	if err != nil {
		return nil, err
	}
	defs := make([]StageDefinition, len(path))
	for i, id := range path {
		def, err := Lookup(id)
		if err != nil {
			return nil, err
		}
		defs[i] = def
	}

	entered := make([]time.Time, len(path))
	for i := range path {
		if i == 0 {
			entered[i] = created
			continue
		}
		entered[i] = entered[i-1].AddDate(0, 0, b.offset())
	}

	rows := make([]StageRow, 0, len(path))
	for i, def := range defs {
		row := StageRow{
			Amount:      amount,
			Forecast:    Forecast(amount, def.Probability),
			Probability: def.Probability,
			Stage:       def.ID,
			EnteredDate: entered[i],
			Pipeline:    b.pipeline,
		}
		if i == 0 {
			c := created
			row.CreateDate = &c
		}
		if i+1 < len(entered) {
			days := daysBetween(entered[i], entered[i+1])
			row.DaysInStage = &days
		}
		if def.Category.IsClosed() {
			closed := entered[i]
			row.ClosedDate = &closed
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
