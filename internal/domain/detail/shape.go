package detail

import "github.com/FACorreiaa/range-tracker/internal/domain/reconcile"

type rowView struct {
	Segment     string `json:"segment"`
	Subgroup    string `json:"subgroup"`
	FabricType  string `json:"fabricType"`
	Description string `json:"description"`
	Planned     int    `json:"planned"`
	Draft       int    `json:"draft"`
	Actual      int    `json:"actual"`
	Diff        int    `json:"diff"`
	Ratio       string `json:"ratio"`
}

type legacyRowView struct {
	Segment     string `json:"lifeStyleGrup"`
	Subgroup    string `json:"urunAltGrup"`
	FabricType  string `json:"kumasTipi"`
	Description string `json:"aciklama"`
	Planned     int    `json:"pOpt"`
	Draft       int    `json:"tOpt"`
	Actual      int    `json:"gOpt"`
	Diff        int    `json:"fark"`
	Ratio       string `json:"oran"`
}

type fabricView struct {
	FabricType   string `json:"fabricType"`
	TotalPlanned int    `json:"totalPlanned"`
	RowCount     int    `json:"rowCount"`
}

type legacyFabricView struct {
	FabricType   string `json:"kumasTipi"`
	TotalPlanned int    `json:"toplamPlan"`
	RowCount     int    `json:"satirSayisi"`
}

// EncodeRows renders detail rows in the requested shape.
func EncodeRows(rows []Row, shape reconcile.Shape) any {
	if shape == reconcile.ShapeLegacy {
		out := make([]legacyRowView, 0, len(rows))
		for _, r := range rows {
			out = append(out, legacyRowView(toView(r)))
		}
		return out
	}

	out := make([]rowView, 0, len(rows))
	for _, r := range rows {
		out = append(out, toView(r))
	}
	return out
}

func toView(r Row) rowView {
	return rowView{
		Segment: r.Segment, Subgroup: r.Subgroup, FabricType: r.FabricType, Description: r.Description,
		Planned: r.Planned, Draft: r.Draft, Actual: r.Actual, Diff: r.Diff,
		Ratio: reconcile.FormatPercent(r.Ratio),
	}
}

// EncodeFabricSummaries renders per-fabric totals in the requested shape.
func EncodeFabricSummaries(sums []FabricSummary, shape reconcile.Shape) any {
	if shape == reconcile.ShapeLegacy {
		out := make([]legacyFabricView, 0, len(sums))
		for _, f := range sums {
			out = append(out, legacyFabricView(fabricView(f)))
		}
		return out
	}

	out := make([]fabricView, 0, len(sums))
	for _, f := range sums {
		out = append(out, fabricView(f))
	}
	return out
}
