package grpc

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/goldfolio-backend/internal/domain"
	"github.com/simaogato/goldfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/goldfolio-backend/internal/usecase/portfolio"
)

// stringField reads a request field as a string. Numbers are accepted and
// rendered without exponent so clients may send amounts either way.
func stringField(req *structpb.Struct, name string) string {
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
	default:
		return ""
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// nullableDecimal renders a price as its exact decimal string, or null.
func nullableDecimal(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func lotFields(lot *domain.Lot) map[string]interface{} {
	fields := map[string]interface{}{
		"id":             lot.ID.String(),
		"asset_type":     string(lot.AssetType),
		"amount":         lot.Amount.String(),
		"purchase_price": lot.PurchasePrice.String(),
		"purchase_date":  formatTime(lot.PurchaseDate),
		"status":         string(lot.Status),
		"selling_price":  nil,
		"selling_date":   nil,
	}
	if lot.SellingPrice != nil {
		fields["selling_price"] = lot.SellingPrice.String()
	}
	if lot.SellingDate != nil {
		fields["selling_date"] = formatTime(*lot.SellingDate)
	}
	return fields
}

func lotList(lots []*domain.Lot) []interface{} {
	out := make([]interface{}, 0, len(lots))
	for _, lot := range lots {
		out = append(out, lotFields(lot))
	}
	return out
}

// resultFields renders a mutation outcome; error and kind are present only on failure.
func resultFields(res ledger.Result) map[string]interface{} {
	fields := map[string]interface{}{"success": res.Success}
	if !res.Success {
		fields["error"] = res.Error
		fields["kind"] = res.Kind
	}
	return fields
}

func snapshotFields(snap *domain.PriceSnapshot, status portfolio.PriceStatus) map[string]interface{} {
	prices := make(map[string]interface{}, len(domain.PriceKeys))
	for _, key := range domain.PriceKeys {
		prices[string(key)] = nullableDecimal(snap.PriceFor(key))
	}
	return map[string]interface{}{
		"prices":         prices,
		"observed_at":    formatTime(snap.ObservedAt),
		"fetched_at":     formatTime(snap.FetchedAt),
		"layout_version": snap.LayoutVersion,
		"partial":        snap.Partial,
		"price_status":   string(status),
	}
}

func overviewFields(o *portfolio.Overview) map[string]interface{} {
	m := o.Metrics

	active := make([]interface{}, 0, len(m.Active))
	for _, v := range m.Active {
		fields := lotFields(v.Lot)
		fields["current_price"] = nullableDecimal(v.CurrentPrice)
		fields["priced"] = v.Priced
		fields["cost"] = v.Cost.String()
		fields["current_value"] = v.CurrentValue.String()
		fields["profit"] = v.Profit.String()
		fields["profit_percent"] = v.ProfitPercent.StringFixed(2)
		active = append(active, fields)
	}

	sold := make([]interface{}, 0, len(m.Sold))
	for _, v := range m.Sold {
		fields := lotFields(v.Lot)
		fields["cost"] = v.Cost.String()
		fields["sale_value"] = v.SaleValue.String()
		fields["realized_profit"] = v.RealizedProfit.String()
		sold = append(sold, fields)
	}

	quantities := make(map[string]interface{}, len(m.Quantities))
	for assetType, qty := range m.Quantities {
		quantities[string(assetType)] = qty.String()
	}

	allocation := make([]interface{}, 0, len(m.Allocation))
	for _, slice := range m.Allocation {
		allocation = append(allocation, map[string]interface{}{
			"asset_type": string(slice.AssetType),
			"value":      slice.Value.String(),
		})
	}

	fields := map[string]interface{}{
		"active": active,
		"sold":   sold,
		"totals": map[string]interface{}{
			"cost":            m.TotalCost.String(),
			"current_value":   m.TotalCurrentValue.String(),
			"profit":          m.TotalProfit.String(),
			"profit_percent":  m.TotalProfitPercent.StringFixed(2),
			"realized_profit": m.RealizedProfit.String(),
		},
		"quantities":   quantities,
		"allocation":   allocation,
		"unpriced":     m.Unpriced,
		"price_status": string(o.PriceStatus),
		"observed_at":  nil,
	}
	if o.Snapshot != nil {
		fields["observed_at"] = formatTime(o.Snapshot.ObservedAt)
	}
	if o.PriceError != nil {
		fields["price_error"] = o.PriceError.Error()
	}
	return fields
}
