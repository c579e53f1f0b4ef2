package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client represents a customer record managed by the backend.
type Client struct {
	ID             int    `json:"id"`
	DocumentNumber string `json:"numero_documento"`
	Name           string `json:"nombre"`
	Email          string `json:"email"`
	Phone          string `json:"telefono"`
	Address        string `json:"direccion"`
}

// QuotationStatus is the backend lifecycle state of a quotation.
type QuotationStatus string

const (
	QuotationPending   QuotationStatus = "pendiente"
	QuotationConverted QuotationStatus = "convertida"
	QuotationCancelled QuotationStatus = "anulada"
)

// Quotation is a quotation header as returned by the backend.
// Detail is only populated by the detail sub-resource.
type Quotation struct {
	ID           int             `json:"id"`
	Number       string          `json:"numero"`
	ClientID     *int            `json:"cliente_id,omitempty"`
	ClientName   string          `json:"cliente_nombre"`
	Status       QuotationStatus `json:"estado"`
	Total        decimal.Decimal `json:"total"`
	TotalItems   decimal.Decimal `json:"total_items"`
	TotalWithFee decimal.Decimal `json:"total_con_comision"`
	CreatedBy    string          `json:"usuario"`
	CreatedAt    time.Time       `json:"created_at"`
	Detail       []LinePayload   `json:"detalle,omitempty"`
}

// Editable reports whether the quotation detail may still be changed.
func (q Quotation) Editable() bool {
	return q.Status == "" || q.Status == QuotationPending
}

// Sale is the backend's acknowledgement of a created sale.
type Sale struct {
	ID           int             `json:"id"`
	Number       string          `json:"numero"`
	Total        decimal.Decimal `json:"total"`
	TotalWithFee decimal.Decimal `json:"total_con_comision"`
	Method       PaymentMethod   `json:"metodo_pago"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DashboardMetrics is the aggregate snapshot shown on the dashboard screen.
type DashboardMetrics struct {
	SalesToday       decimal.Decimal `json:"ventas_hoy"`
	SalesMonth       decimal.Decimal `json:"ventas_mes"`
	SalesCountToday  int             `json:"cantidad_ventas_hoy"`
	QuotationsOpen   int             `json:"cotizaciones_pendientes"`
	LowStockProducts int             `json:"productos_stock_bajo"`
	TopProducts      []ProductSales  `json:"productos_mas_vendidos"`
}

// ProductSales is one row of the dashboard's best-sellers ranking.
type ProductSales struct {
	ProductCode string          `json:"producto_codigo"`
	ProductName string          `json:"producto_nombre"`
	Quantity    decimal.Decimal `json:"cantidad"`
	Amount      decimal.Decimal `json:"monto"`
}
