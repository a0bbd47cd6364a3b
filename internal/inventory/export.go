package inventory

import (
	"fmt"
	"time"

	"zinc-warehouse/internal/models"
	"zinc-warehouse/internal/stock"
	"zinc-warehouse/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	movementHeader = []any{"ID", "班组", "锌锭种类", "数量(个)", "重量(KG)", "时间", "E", "F", "G"}
	aluminumHeader = []any{"ID", "班组", "数量(个)", "重量(KG)", "时间", "E", "F", "G"}
	stockHeader    = []any{"锌锭种类", "入库数量", "入库重量(KG)", "出库数量", "出库重量(KG)", "剩余数量", "剩余重量(KG)"}
)

// buildWorkbook writes header and rows onto a single sheet named sheet.
func buildWorkbook(sheet string, header []any, rows [][]any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}
	for i, row := range append([][]any{header}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func sendWorkbook(c *fiber.Ctx, f *excelize.File, name string) error {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().UTC().Format("20060102"))
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

func movementRow(m models.ZincMovement) []any {
	return []any{m.ID, m.Team, m.ZincType, m.Quantity, stock.FormatWeight(m.Weight), formatDate(m.Date), m.FieldE, m.FieldF, m.FieldG}
}

// GET /api/gi-inbound/export
func ExportInboundHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recs, err := store.List[models.GiInbound](db.WithContext(c.UserContext()))
		if err != nil {
			return err
		}
		rows := make([][]any, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, movementRow(r.ZincMovement))
		}
		f, err := buildWorkbook("入库", movementHeader, rows)
		if err != nil {
			return err
		}
		return sendWorkbook(c, f, "gi_inbound")
	}
}

// GET /api/gi-outbound/export
func ExportOutboundHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recs, err := store.List[models.GiOutbound](db.WithContext(c.UserContext()))
		if err != nil {
			return err
		}
		rows := make([][]any, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, movementRow(r.ZincMovement))
		}
		f, err := buildWorkbook("出库", movementHeader, rows)
		if err != nil {
			return err
		}
		return sendWorkbook(c, f, "gi_outbound")
	}
}

// GET /api/aluminum/export
func ExportAluminumHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recs, err := store.List[models.AluminumZinc](db.WithContext(c.UserContext()))
		if err != nil {
			return err
		}
		rows := make([][]any, 0, len(recs))
		for _, a := range recs {
			rows = append(rows, []any{a.ID, a.Team, a.Quantity, stock.FormatWeight(a.Weight), formatDate(a.Date), a.FieldE, a.FieldF, a.FieldG})
		}
		f, err := buildWorkbook("铝锌", aluminumHeader, rows)
		if err != nil {
			return err
		}
		return sendWorkbook(c, f, "aluminum_zinc")
	}
}

// GET /api/stock/export
func ExportStockHandler(db *gorm.DB, zincTypes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		all, err := stock.ComputeAll(db.WithContext(c.UserContext()), zincTypes)
		if err != nil {
			return err
		}
		rows := make([][]any, 0, len(zincTypes)+1)
		for _, t := range append(append([]string{}, zincTypes...), stock.TotalKey) {
			s := all[t]
			rows = append(rows, []any{
				t,
				s.InboundQuantity, stock.FormatWeight(s.InboundWeight),
				s.OutboundQuantity, stock.FormatWeight(s.OutboundWeight),
				s.RemainingQuantity, stock.FormatWeight(s.RemainingWeight),
			})
		}
		f, err := buildWorkbook("库存", stockHeader, rows)
		if err != nil {
			return err
		}
		return sendWorkbook(c, f, "stock")
	}
}
