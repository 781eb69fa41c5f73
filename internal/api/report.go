package api

import (
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

// dateRange parses optional from/to query parameters in YYYY-MM-DD form.
// Zero values are returned for absent parameters; the report service
// applies its own defaults.
func dateRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		from, err = time.Parse(dateLayout, s)
		if err != nil {
			return from, to, err
		}
	}
	if s := q.Get("to"); s != "" {
		to, err = time.Parse(dateLayout, s)
		if err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

type salesReportResponse struct {
	Sales   []saleResponse       `json:"sales"`
	Summary salesSummaryResponse `json:"summary"`
}

type salesSummaryResponse struct {
	TotalRevenue      Money `json:"total_revenue"`
	TotalTransactions int   `json:"total_transactions"`
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	rep, err := h.reports.Sales(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, salesReportResponse{
		Sales: toSaleResponses(rep.Sales),
		Summary: salesSummaryResponse{
			TotalRevenue:      NewMoney(rep.Summary.TotalRevenue),
			TotalTransactions: rep.Summary.TotalTransactions,
		},
	})
}

type purchasesReportResponse struct {
	Purchases []purchaseResponse       `json:"purchases"`
	Summary   purchasesSummaryResponse `json:"summary"`
}

type purchasesSummaryResponse struct {
	TotalPurchases    Money `json:"total_purchases"`
	TotalTransactions int   `json:"total_transactions"`
}

func (h *Handler) purchasesReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	rep, err := h.reports.Purchases(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	purchases := make([]purchaseResponse, len(rep.Purchases))
	for i := range rep.Purchases {
		purchases[i] = toPurchaseResponse(&rep.Purchases[i])
	}
	writeJSON(w, http.StatusOK, purchasesReportResponse{
		Purchases: purchases,
		Summary: purchasesSummaryResponse{
			TotalPurchases:    NewMoney(rep.Summary.TotalPurchases),
			TotalTransactions: rep.Summary.TotalTransactions,
		},
	})
}

type inventoryReportResponse struct {
	Products []productResponse        `json:"products"`
	LowStock []productResponse        `json:"low_stock"`
	Summary  inventorySummaryResponse `json:"summary"`
}

type inventorySummaryResponse struct {
	TotalProducts int `json:"total_products"`
	TotalLowStock int `json:"total_low_stock"`
}

func (h *Handler) inventoryReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Inventory(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryReportResponse{
		Products: toProductResponses(rep.Products),
		LowStock: toProductResponses(rep.LowStock),
		Summary: inventorySummaryResponse{
			TotalProducts: rep.Summary.TotalProducts,
			TotalLowStock: rep.Summary.TotalLowStock,
		},
	})
}

type dashboardResponse struct {
	TodayRevenue      Money          `json:"today_revenue"`
	TodayTransactions int            `json:"today_transactions"`
	ProductCount      int            `json:"product_count"`
	CustomerCount     int            `json:"customer_count"`
	LowStockCount     int            `json:"low_stock_count"`
	RecentSales       []saleResponse `json:"recent_sales"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reports.Dashboard(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		TodayRevenue:      NewMoney(d.TodayRevenue),
		TodayTransactions: d.TodayTransactions,
		ProductCount:      d.ProductCount,
		CustomerCount:     d.CustomerCount,
		LowStockCount:     d.LowStockCount,
		RecentSales:       toSaleResponses(d.RecentSales),
	})
}
