package inventory

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"zinc-warehouse/internal/models"
	"zinc-warehouse/internal/stock"
	"zinc-warehouse/internal/store"

	"github.com/gofiber/fiber/v2"
)

// wireValue accepts a JSON string or a bare number and remembers whether the
// key was sent at all. null counts as not sent.
type wireValue struct {
	Set  bool
	Text string
}

func (v *wireValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = wireValue{}
		return nil
	}
	v.Set = true
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &v.Text)
	}
	v.Text = string(b)
	return nil
}

func (v wireValue) str() *string {
	if !v.Set {
		return nil
	}
	s := v.Text
	return &s
}

// RecordRequest is the lettered body the front-end sends for every record
// kind: A team, B quantity, C weight (KG), D time, E/F/G notes.
type RecordRequest struct {
	Team     wireValue `json:"A"`
	ZincType wireValue `json:"ZincType"`
	Quantity wireValue `json:"B"`
	Weight   wireValue `json:"C"`
	Date     wireValue `json:"D"`
	FieldE   wireValue `json:"E"`
	FieldF   wireValue `json:"F"`
	FieldG   wireValue `json:"G"`
}

// Patch parses the request. An empty D means "no time given".
func (r RecordRequest) Patch() (store.Patch, error) {
	p := store.Patch{
		Team:     r.Team.str(),
		ZincType: r.ZincType.str(),
		FieldE:   r.FieldE.str(),
		FieldF:   r.FieldF.str(),
		FieldG:   r.FieldG.str(),
	}
	if r.Quantity.Set {
		q, err := store.ParseQuantity(r.Quantity.Text)
		if err != nil {
			return store.Patch{}, err
		}
		p.Quantity = &q
	}
	if r.Weight.Set {
		w, err := store.ParseWeight(r.Weight.Text)
		if err != nil {
			return store.Patch{}, err
		}
		p.Weight = &w
	}
	if r.Date.Set && strings.TrimSpace(r.Date.Text) != "" {
		d, err := store.ParseTimestamp(r.Date.Text)
		if err != nil {
			return store.Patch{}, err
		}
		p.Date = &d
	}
	return p, nil
}

type RecordResponse struct {
	ID       uint   `json:"id"`
	Team     string `json:"A"`
	ZincType string `json:"ZincType,omitempty"`
	Quantity string `json:"B"`
	Weight   string `json:"C"`
	Date     string `json:"D"`
	FieldE   string `json:"E"`
	FieldF   string `json:"F"`
	FieldG   string `json:"G"`
	Selected bool   `json:"selected"`
}

func movementResponse(m models.ZincMovement) RecordResponse {
	return RecordResponse{
		ID:       m.ID,
		Team:     m.Team,
		ZincType: m.ZincType,
		Quantity: formatQuantity(m.Quantity),
		Weight:   stock.FormatWeight(m.Weight),
		Date:     formatDate(m.Date),
		FieldE:   m.FieldE,
		FieldF:   m.FieldF,
		FieldG:   m.FieldG,
	}
}

func aluminumResponse(a models.AluminumZinc) RecordResponse {
	return RecordResponse{
		ID:       a.ID,
		Team:     a.Team,
		Quantity: formatQuantity(a.Quantity),
		Weight:   stock.FormatWeight(a.Weight),
		Date:     formatDate(a.Date),
		FieldE:   a.FieldE,
		FieldF:   a.FieldF,
		FieldG:   a.FieldG,
	}
}

func formatQuantity(q int64) string {
	return strconv.FormatInt(q, 10)
}

// formatDate prints the business time in UTC, the zone it was parsed in.
// Postgres hands timestamptz values back in the server's local zone.
func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.UTC().Format("2006-01-02T15:04:05")
}

type BatchDeleteRequest struct {
	IDs []uint `json:"ids"`
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "无效的记录ID")
	}
	return uint(id), nil
}

func parseRecordBody(c *fiber.Ctx) (store.Patch, error) {
	var body RecordRequest
	if err := c.BodyParser(&body); err != nil {
		return store.Patch{}, fiber.NewError(fiber.StatusBadRequest, "请求格式错误")
	}
	return body.Patch()
}

func parseBatchDelete(c *fiber.Ctx) ([]uint, error) {
	var body BatchDeleteRequest
	if err := c.BodyParser(&body); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "请求格式错误")
	}
	return body.IDs, nil
}
