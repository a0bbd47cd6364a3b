package inventory

import (
	"zinc-warehouse/internal/stock"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StockResponse struct {
	InboundQuantity   int64   `json:"inbound_quantity"`
	InboundWeight     float64 `json:"inbound_weight"`
	OutboundQuantity  int64   `json:"outbound_quantity"`
	OutboundWeight    float64 `json:"outbound_weight"`
	RemainingQuantity int64   `json:"remaining_quantity"`
	RemainingWeight   float64 `json:"remaining_weight"`
}

func toStockResponse(s stock.Snapshot) StockResponse {
	return StockResponse{
		InboundQuantity:   s.InboundQuantity,
		InboundWeight:     s.InboundWeight.InexactFloat64(),
		OutboundQuantity:  s.OutboundQuantity,
		OutboundWeight:    s.OutboundWeight.InexactFloat64(),
		RemainingQuantity: s.RemainingQuantity,
		RemainingWeight:   s.RemainingWeight.InexactFloat64(),
	}
}

// GET /api/stock?zincType=
//
// With zincType, a single snapshot; any type may be asked for and it is
// matched verbatim. Without it, one snapshot per configured type plus "total".
func GetStockHandler(db *gorm.DB, zincTypes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tx := db.WithContext(c.UserContext())

		if zincType := c.Query("zincType"); zincType != "" {
			s, err := stock.Compute(tx, zincType, 0)
			if err != nil {
				return err
			}
			return c.JSON(fiber.Map{"success": true, "data": toStockResponse(s)})
		}

		all, err := stock.ComputeAll(tx, zincTypes)
		if err != nil {
			return err
		}
		resp := make(map[string]StockResponse, len(all))
		for k, s := range all {
			resp[k] = toStockResponse(s)
		}
		return c.JSON(fiber.Map{"success": true, "data": resp})
	}
}
