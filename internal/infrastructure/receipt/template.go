package receipt

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/shared/valueobject"
)

// brl renders a decimal amount with Brazilian number formatting for the
// receipt, matching the "R$" prefix in the template
func brl(amount decimal.Decimal) string {
	return valueobject.NewMoneyBRL(amount).Display()
}

// receiptTemplate renders the printable order receipt. It is rendered to
// HTML first and then printed to A4 PDF by the configured renderer.
var receiptTemplate = template.Must(template.New("receipt").Parse(`
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #1a1a1a; }
  h1 { font-size: 20px; margin-bottom: 2px; }
  .muted { color: #666; }
  .section { margin-top: 18px; }
  table { width: 100%; border-collapse: collapse; margin-top: 6px; }
  th { text-align: left; border-bottom: 1px solid #ccc; padding: 4px 2px; font-size: 11px; text-transform: uppercase; color: #666; }
  td { padding: 5px 2px; border-bottom: 1px solid #eee; }
  td.num, th.num { text-align: right; }
  .totals td { border: none; padding: 2px; }
  .totals .grand { font-weight: bold; font-size: 14px; border-top: 1px solid #ccc; }
  .code { font-size: 16px; font-weight: bold; letter-spacing: 2px; }
</style>
<h1>{{.StoreName}}</h1>
<p class="muted">Recibo do pedido {{.OrderNumber}}{{if .PaidAt}} &middot; pago em {{.PaidAt}}{{end}}</p>

<div class="section">
  <strong>Cliente</strong><br>
  {{.CustomerName}}<br>
  {{.CustomerEmail}}{{if .CustomerTaxID}}<br>CPF: {{.CustomerTaxID}}{{end}}
</div>

<div class="section">
  <strong>Entrega</strong><br>
  {{.AddressLine}}<br>
  {{.AddressCity}} - {{.AddressState}}, CEP {{.AddressPostalCode}}
</div>

<div class="section">
  <table>
    <tr><th>Item</th><th class="num">Qtd</th><th class="num">Unit&aacute;rio</th><th class="num">Subtotal</th></tr>
    {{range .Items}}<tr>
      <td>{{.ProductName}}{{if .Size}} ({{.Size}}){{end}}{{if .Color}} - {{.Color}}{{end}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">R$ {{.UnitPrice}}</td>
      <td class="num">R$ {{.Subtotal}}</td>
    </tr>
    {{end}}
  </table>
</div>

<div class="section">
  <table class="totals">
    <tr><td>Subtotal</td><td class="num">R$ {{.Subtotal}}</td></tr>
    {{if .HasDiscount}}<tr><td>Desconto</td><td class="num">-R$ {{.DiscountAmount}}</td></tr>{{end}}
    <tr><td>Frete</td><td class="num">R$ {{.ShippingCost}}</td></tr>
    <tr class="grand"><td class="grand">Total</td><td class="num grand">R$ {{.TotalAmount}}</td></tr>
  </table>
</div>

{{if .PaymentMethod}}<div class="section">
  <strong>Pagamento</strong><br>
  {{.PaymentMethod}}{{if .Installments}} em {{.Installments}}x{{end}}
</div>{{end}}

{{if .VerificationCode}}<div class="section">
  <strong>C&oacute;digo de verifica&ccedil;&atilde;o</strong><br>
  <span class="code">{{.VerificationCode}}</span><br>
  <span class="muted">Apresente este c&oacute;digo na entrega.</span>
</div>{{end}}
`))

type receiptData struct {
	StoreName         string
	OrderNumber       string
	PaidAt            string
	CustomerName      string
	CustomerEmail     string
	CustomerTaxID     string
	AddressLine       string
	AddressCity       string
	AddressState      string
	AddressPostalCode string
	Items             []receiptItem
	Subtotal          string
	HasDiscount       bool
	DiscountAmount    string
	ShippingCost      string
	TotalAmount       string
	PaymentMethod     string
	Installments      int
	VerificationCode  string
}

type receiptItem struct {
	ProductName string
	Size        string
	Color       string
	Quantity    int
	UnitPrice   string
	Subtotal    string
}

// Generator renders an order receipt to PDF
type Generator struct {
	renderer  PDFRenderer
	storeName string
}

// NewGenerator creates a receipt generator backed by the given renderer
func NewGenerator(renderer PDFRenderer, storeName string) *Generator {
	if storeName == "" {
		storeName = "Vesti"
	}
	return &Generator{renderer: renderer, storeName: storeName}
}

// RenderReceipt renders the PDF receipt for a paid order
func (g *Generator) RenderReceipt(ctx context.Context, order *checkout.Order) ([]byte, error) {
	html, err := g.buildHTML(order)
	if err != nil {
		return nil, err
	}

	result, err := g.renderer.Render(ctx, &RenderRequest{
		HTML:  html,
		Title: fmt.Sprintf("Recibo %s", order.OrderNumber),
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

// Close releases the underlying renderer
func (g *Generator) Close() error {
	return g.renderer.Close()
}

// buildHTML renders the receipt template for an order
func (g *Generator) buildHTML(order *checkout.Order) (string, error) {
	addressLine := order.AddressStreet + ", " + order.AddressNumber
	if order.AddressComplement != "" {
		addressLine += " - " + order.AddressComplement
	}
	if order.AddressNeighborhood != "" {
		addressLine += ", " + order.AddressNeighborhood
	}

	data := receiptData{
		StoreName:         g.storeName,
		OrderNumber:       order.OrderNumber,
		CustomerName:      order.CustomerName,
		CustomerEmail:     order.CustomerEmail,
		CustomerTaxID:     order.CustomerTaxID,
		AddressLine:       addressLine,
		AddressCity:       order.AddressCity,
		AddressState:      order.AddressState,
		AddressPostalCode: order.AddressPostalCode,
		Subtotal:          brl(order.Subtotal),
		HasDiscount:       order.DiscountAmount.IsPositive(),
		DiscountAmount:    brl(order.DiscountAmount),
		ShippingCost:      brl(order.ShippingCost),
		TotalAmount:       brl(order.TotalAmount),
		PaymentMethod:     order.PaymentMethod,
		Installments:      order.Installments,
		VerificationCode:  order.VerificationCode,
	}
	if order.PaidAt != nil {
		data.PaidAt = order.PaidAt.Format("02/01/2006 15:04")
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, receiptItem{
			ProductName: item.ProductName,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
			UnitPrice:   brl(item.UnitPrice),
			Subtotal:    brl(item.Subtotal),
		})
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("receipt: failed to render template: %w", err)
	}
	return buf.String(), nil
}
