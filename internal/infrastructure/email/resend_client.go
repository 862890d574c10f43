// Package email implements outbound transactional mail against a
// Resend-style REST API. Sends are best effort: callers log failures and
// move on, an undelivered confirmation never blocks order processing.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/shared/valueobject"
)

const (
	resendAPIBaseURL = "https://api.resend.com"
	sendPath         = "/emails"
)

// Config contains configuration for the email client
type Config struct {
	BaseURL     string
	APIKey      string
	FromAddress string
	FromName    string
	StoreName   string
	Timeout     time.Duration
}

// ResendClient sends transactional email through a Resend-style API
type ResendClient struct {
	client *resty.Client
	config Config
}

// NewResendClient creates a new email client
func NewResendClient(config Config) *ResendClient {
	if config.BaseURL == "" {
		config.BaseURL = resendAPIBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.StoreName == "" {
		config.StoreName = "Vesti"
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetTimeout(config.Timeout).
		SetAuthToken(config.APIKey).
		SetHeader("Content-Type", "application/json")

	return &ResendClient{client: client, config: config}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Tags    []tag    `json:"tags,omitempty"`
}

type tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// confirmationTemplate renders the order confirmation body. The verification
// code is the anti-fraud code the customer presents on delivery.
var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<h2>Pedido {{.OrderNumber}} confirmado!</h2>
<p>Olá {{.CustomerName}},</p>
<p>Recebemos o pagamento do seu pedido e ele já está em preparação.</p>
{{if .VerificationCode}}<p>Seu código de verificação é <strong>{{.VerificationCode}}</strong>.
Guarde este código: ele pode ser solicitado na entrega.</p>{{end}}
<table>
{{range .Items}}<tr><td>{{.Quantity}}x {{.ProductName}}{{if .Size}} ({{.Size}}){{end}}</td><td>R$ {{.Subtotal}}</td></tr>
{{end}}</table>
<p>Frete: R$ {{.ShippingCost}}<br>Total: R$ {{.TotalAmount}}</p>
<p>{{.StoreName}}</p>
`))

type confirmationData struct {
	OrderNumber      string
	CustomerName     string
	VerificationCode string
	Items            []confirmationItem
	ShippingCost     string
	TotalAmount      string
	StoreName        string
}

type confirmationItem struct {
	Quantity    int
	ProductName string
	Size        string
	Subtotal    string
}

// SendOrderConfirmation sends the payment confirmation email for a paid order
func (c *ResendClient) SendOrderConfirmation(ctx context.Context, order *checkout.Order) error {
	data := confirmationData{
		OrderNumber:      order.OrderNumber,
		CustomerName:     order.CustomerName,
		VerificationCode: order.VerificationCode,
		ShippingCost:     valueobject.NewMoneyBRL(order.ShippingCost).Display(),
		TotalAmount:      valueobject.NewMoneyBRL(order.TotalAmount).Display(),
		StoreName:        c.config.StoreName,
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, confirmationItem{
			Quantity:    item.Quantity,
			ProductName: item.ProductName,
			Size:        item.Size,
			Subtotal:    valueobject.NewMoneyBRL(item.Subtotal).Display(),
		})
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("email: failed to render confirmation: %w", err)
	}

	subject := fmt.Sprintf("%s - Pedido %s confirmado", c.config.StoreName, order.OrderNumber)
	return c.send(ctx, order.CustomerEmail, subject, body.String(), order.OrderNumber)
}

// send posts a single email to the provider
func (c *ResendClient) send(ctx context.Context, to, subject, html, orderNumber string) error {
	req := sendRequest{
		From:    fmt.Sprintf("%s <%s>", c.config.FromName, c.config.FromAddress),
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	}
	if orderNumber != "" {
		req.Tags = []tag{{Name: "order_number", Value: orderNumber}}
	}

	var (
		result sendResponse
		apiErr errorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&apiErr).
		Post(sendPath)
	if err != nil {
		return fmt.Errorf("email: send failed: %w", err)
	}
	if resp.IsError() {
		if apiErr.Message != "" {
			return fmt.Errorf("email: provider rejected send: %s", apiErr.Message)
		}
		return fmt.Errorf("email: provider rejected send: HTTP %d", resp.StatusCode())
	}
	if result.ID == "" {
		return fmt.Errorf("email: provider returned no message id")
	}
	return nil
}
