package inventory

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"zinc-warehouse/internal/models"
	"zinc-warehouse/internal/store"

	"github.com/shopspring/decimal"
)

func TestRecordRequestAcceptsStringsAndNumbers(t *testing.T) {
	var req RecordRequest
	body := `{"A":"甲","ZincType":"A","B":12,"C":"45.5","D":"2024-05-01T08:30","E":null}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p, err := req.Patch()
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if p.Quantity == nil || *p.Quantity != 12 {
		t.Errorf("quantity: %v", p.Quantity)
	}
	if p.Weight == nil || !p.Weight.Equal(decimal.RequireFromString("45.5")) {
		t.Errorf("weight: %v", p.Weight)
	}
	if p.Date == nil || !p.Date.Equal(time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("date: %v", p.Date)
	}
	if p.FieldE != nil || p.FieldF != nil {
		t.Errorf("absent and null fields must stay unset")
	}
}

func TestRecordRequestRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		body  string
		field string
	}{
		{`{"ZincType":"A","B":"十"}`, "B"},
		{`{"ZincType":"A","B":-1}`, "B"},
		{`{"ZincType":"A","B":1.5}`, "B"},
		{`{"ZincType":"A","C":"heavy"}`, "C"},
		{`{"ZincType":"A","D":"2024/05/01"}`, "D"},
		{`{"ZincType":"A","C":"123456789012345.5"}`, "C"},
		{`{"ZincType":"A","C":10.0005}`, "C"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req RecordRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			_, err := req.Patch()
			var ve *store.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("expected validation error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestEmptyDateMeansNoDate(t *testing.T) {
	var req RecordRequest
	if err := json.Unmarshal([]byte(`{"ZincType":"A","D":""}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p, err := req.Patch()
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if p.Date != nil {
		t.Errorf("expected no date, got %v", p.Date)
	}
}

func TestMovementResponse(t *testing.T) {
	d := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	resp := movementResponse(models.ZincMovement{
		ID: 3, Team: "甲", ZincType: "B", Quantity: 100,
		Weight: decimal.NewFromInt(500), Date: &d,
	})
	if resp.Quantity != "100" || resp.Weight != "500.0" || resp.Date != "2024-05-01T08:30:00" || resp.Selected {
		t.Errorf("unexpected response %+v", resp)
	}

	if r := movementResponse(models.ZincMovement{Weight: decimal.RequireFromString("12.125")}); r.Weight != "12.125" || r.Date != "" {
		t.Errorf("unexpected response %+v", r)
	}
}

func TestFormatDateIsUTC(t *testing.T) {
	sent, err := store.ParseTimestamp("2024-05-01T08:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// Postgres returns timestamptz in the server's zone.
	shanghai := time.FixedZone("CST", 8*60*60)
	back := sent.In(shanghai)

	if got := formatDate(&back); got != "2024-05-01T08:00:00" {
		t.Errorf("expected the time as sent, got %s", got)
	}
}
