package store

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"zinc-warehouse/internal/models"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the date-time format accepted from clients.
const TimestampLayout = "2006-01-02T15:04"

// maxWeight is the first value a numeric(WeightPrecision, WeightScale) column rejects.
var maxWeight = decimal.New(1, models.WeightPrecision-models.WeightScale)

// Patch carries already-parsed record fields. A nil field was not sent.
type Patch struct {
	Team     *string
	ZincType *string
	Quantity *int64
	Weight   *decimal.Decimal
	Date     *time.Time
	FieldE   *string
	FieldF   *string
	FieldG   *string
}

func ParseQuantity(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, invalid("B", "数量必须是整数")
	}
	if n < 0 {
		return 0, invalid("B", "数量不能为负数")
	}
	return n, nil
}

func ParseWeight(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, invalid("C", "重量必须是数字")
	}
	if d.IsNegative() {
		return decimal.Zero, invalid("C", "重量不能为负数")
	}
	if !d.Equal(d.Truncate(models.WeightScale)) {
		return decimal.Zero, invalid("C", "重量最多保留3位小数")
	}
	if d.GreaterThanOrEqual(maxWeight) {
		return decimal.Zero, invalid("C", "重量超出范围")
	}
	return d, nil
}

func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, invalid("D", "时间格式必须是 YYYY-MM-DDTHH:MM")
	}
	return t, nil
}

// CheckText validates free-text lengths against their column sizes.
func (p Patch) CheckText() error {
	checks := []struct {
		field string
		value *string
		max   int
	}{
		{"A", p.Team, models.TeamSize},
		{"ZincType", p.ZincType, models.ZincTypeSize},
		{"E", p.FieldE, models.NoteSize},
		{"F", p.FieldF, models.NoteSize},
		{"G", p.FieldG, models.NoteSize},
	}
	for _, c := range checks {
		if c.value != nil && utf8.RuneCountInString(*c.value) > c.max {
			return invalid(c.field, "内容过长，最多"+strconv.Itoa(c.max)+"个字符")
		}
	}
	if p.ZincType != nil && *p.ZincType == "" {
		return invalid("ZincType", "锌锭种类不能为空")
	}
	return nil
}

// NewMovement builds a movement from a create request. Absent numbers
// default to zero and an absent time stays nil; the zinc type is required.
func (p Patch) NewMovement() (models.ZincMovement, error) {
	if p.ZincType == nil {
		return models.ZincMovement{}, invalid("ZincType", "锌锭种类不能为空")
	}
	if err := p.CheckText(); err != nil {
		return models.ZincMovement{}, err
	}
	m := models.ZincMovement{Weight: decimal.Zero}
	p.ApplyMovement(&m)
	return m, nil
}

// ApplyMovement copies the present fields onto m.
func (p Patch) ApplyMovement(m *models.ZincMovement) {
	setString(&m.Team, p.Team)
	setString(&m.ZincType, p.ZincType)
	if p.Quantity != nil {
		m.Quantity = *p.Quantity
	}
	if p.Weight != nil {
		m.Weight = *p.Weight
	}
	if p.Date != nil {
		d := *p.Date
		m.Date = &d
	}
	setString(&m.FieldE, p.FieldE)
	setString(&m.FieldF, p.FieldF)
	setString(&m.FieldG, p.FieldG)
}

func (p Patch) NewAluminum() (models.AluminumZinc, error) {
	if err := p.CheckText(); err != nil {
		return models.AluminumZinc{}, err
	}
	a := models.AluminumZinc{Weight: decimal.Zero}
	p.ApplyAluminum(&a)
	return a, nil
}

// ApplyAluminum copies the present fields onto a. ZincType is ignored.
func (p Patch) ApplyAluminum(a *models.AluminumZinc) {
	setString(&a.Team, p.Team)
	if p.Quantity != nil {
		a.Quantity = *p.Quantity
	}
	if p.Weight != nil {
		a.Weight = *p.Weight
	}
	if p.Date != nil {
		d := *p.Date
		a.Date = &d
	}
	setString(&a.FieldE, p.FieldE)
	setString(&a.FieldF, p.FieldF)
	setString(&a.FieldG, p.FieldG)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
