package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vesti/backend/internal/domain/payment"
)

const (
	mercadoPagoAPIBaseURL     = "https://api.mercadopago.com"
	mercadoPagoPreferencePath = "/checkout/preferences"
	mercadoPagoPaymentPath    = "/v1/payments/%s"

	// mpDateFormat is the timestamp layout the API expects and returns
	mpDateFormat = "2006-01-02T15:04:05.000-07:00"
)

// MercadoPagoAdapter implements the payment.Gateway interface for Mercado Pago
type MercadoPagoAdapter struct {
	config     *MercadoPagoConfig
	httpClient *http.Client
}

// NewMercadoPagoAdapter creates a new Mercado Pago adapter
func NewMercadoPagoAdapter(config *MercadoPagoConfig) (*MercadoPagoAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &MercadoPagoAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// CreatePreference opens a hosted-checkout session for the order
func (a *MercadoPagoAdapter) CreatePreference(ctx context.Context, req payment.CreatePreferenceRequest) (*payment.Preference, error) {
	if req.Order == nil {
		return nil, fmt.Errorf("mercadopago: order is required")
	}

	body := a.buildPreferenceBody(req)
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, mercadoPagoPreferencePath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var respData mpPreferenceResponse
	if err := json.Unmarshal(respBody, &respData); err != nil {
		return nil, fmt.Errorf("mercadopago: failed to parse response: %w", err)
	}
	if respData.ID == "" {
		return nil, payment.ErrPreferenceIncomplete
	}

	pref := &payment.Preference{
		ID:               respData.ID,
		InitPoint:        respData.InitPoint,
		SandboxInitPoint: respData.SandboxInitPoint,
	}
	if respData.ExpirationDateTo != "" {
		if t, err := time.Parse(mpDateFormat, respData.ExpirationDateTo); err == nil {
			pref.ExpiresAt = t
		}
	}

	return pref, nil
}

// FetchPayment retrieves a single payment from the gateway
func (a *MercadoPagoAdapter) FetchPayment(ctx context.Context, paymentID string) (*payment.PaymentDetail, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("mercadopago: payment id is required")
	}

	path := fmt.Sprintf(mercadoPagoPaymentPath, paymentID)

	respBody, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var respData mpPaymentResponse
	if err := json.Unmarshal(respBody, &respData); err != nil {
		return nil, fmt.Errorf("mercadopago: failed to parse response: %w", err)
	}

	detail := &payment.PaymentDetail{
		ID:                strconv.FormatInt(respData.ID, 10),
		Status:            respData.Status,
		StatusDetail:      respData.StatusDetail,
		ExternalReference: respData.ExternalReference,
		PaymentMethod:     respData.PaymentMethodID,
		PaymentType:       respData.PaymentTypeID,
		Installments:      respData.Installments,
		TransactionAmount: decimal.NewFromFloat(respData.TransactionAmount),
	}
	if respData.DateApproved != "" {
		if t, err := time.Parse(mpDateFormat, respData.DateApproved); err == nil {
			detail.DateApproved = &t
		}
	}

	return detail, nil
}

// VerifySignature checks the x-signature header of a webhook request.
// The header carries "ts=<unix>,v1=<hex hmac>" and the HMAC-SHA256 is taken
// over the manifest "id:{resourceId};request-id:{requestId};ts:{ts};" keyed
// with the shared webhook secret.
func (a *MercadoPagoAdapter) VerifySignature(signatureHeader, requestID, resourceID string) error {
	if signatureHeader == "" {
		if a.config.AllowUnsignedWebhooks {
			return nil
		}
		return payment.ErrMissingSignature
	}

	ts, v1, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return err
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(resourceID), requestID, ts)

	mac := hmac.New(sha256.New, []byte(a.config.WebhookSecret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return payment.ErrSignatureMismatch
	}
	return nil
}

// parseSignatureHeader splits "ts=...,v1=..." into its parts
func parseSignatureHeader(header string) (ts, v1 string, err error) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	if ts == "" || v1 == "" {
		return "", "", payment.ErrMalformedSignature
	}
	return ts, v1, nil
}

// buildPreferenceBody builds the request body for creating a preference
func (a *MercadoPagoAdapter) buildPreferenceBody(req payment.CreatePreferenceRequest) *mpPreferenceRequest {
	order := req.Order
	settings := req.Settings

	items := make([]mpPreferenceItem, 0, len(order.Items))
	for _, item := range order.Items {
		title := item.ProductName
		if item.Size != "" {
			title = fmt.Sprintf("%s (%s)", title, item.Size)
		}
		price, _ := item.UnitPrice.Float64()
		items = append(items, mpPreferenceItem{
			ID:         item.ProductID.String(),
			Title:      title,
			PictureURL: item.ImageURL,
			CurrencyID: "BRL",
			Quantity:   item.Quantity,
			UnitPrice:  price,
		})
	}

	// Shipping is charged as an extra line so the preference total matches
	// the order total
	if order.ShippingCost.IsPositive() {
		cost, _ := order.ShippingCost.Float64()
		items = append(items, mpPreferenceItem{
			Title:      "Frete",
			CurrencyID: "BRL",
			Quantity:   1,
			UnitPrice:  cost,
		})
	}

	body := &mpPreferenceRequest{
		Items:               items,
		ExternalReference:   order.OrderNumber,
		NotificationURL:     settings.NotificationURL,
		StatementDescriptor: settings.StatementDescriptor,
		BinaryMode:          settings.BinaryMode,
	}

	body.Payer = &mpPayer{
		Name:  order.CustomerName,
		Email: order.CustomerEmail,
	}
	if order.CustomerPhone != "" {
		body.Payer.Phone = &mpPhone{Number: order.CustomerPhone}
	}
	if order.CustomerTaxID != "" {
		body.Payer.Identification = &mpIdentification{Type: "CPF", Number: order.CustomerTaxID}
	}
	if order.AddressPostalCode != "" {
		body.Payer.Address = &mpAddress{
			ZipCode:      order.AddressPostalCode,
			StreetName:   order.AddressStreet,
			StreetNumber: order.AddressNumber,
		}
	}

	if settings.BackURLBase != "" {
		base := strings.TrimRight(settings.BackURLBase, "/")
		body.BackURLs = &mpBackURLs{
			Success: base + "/checkout/success",
			Pending: base + "/checkout/pending",
			Failure: base + "/checkout/failure",
		}
		body.AutoReturn = "approved"
	}

	methods := &mpPaymentMethods{Installments: settings.MaxInstallments}
	for _, id := range settings.ExcludedPaymentMethods {
		methods.ExcludedPaymentMethods = append(methods.ExcludedPaymentMethods, mpExcluded{ID: id})
	}
	for _, id := range settings.ExcludedPaymentTypes {
		methods.ExcludedPaymentTypes = append(methods.ExcludedPaymentTypes, mpExcluded{ID: id})
	}
	body.PaymentMethods = methods

	if settings.ExpirationWindow > 0 {
		now := time.Now()
		body.Expires = true
		body.ExpirationDateFrom = now.Format(mpDateFormat)
		body.ExpirationDateTo = now.Add(settings.ExpirationWindow).Format(mpDateFormat)
	}

	return body
}

// doRequest performs an HTTP request against the Mercado Pago API
func (a *MercadoPagoAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	url := a.config.BaseURL + path

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, payment.ErrPaymentNotFound
	}
	if resp.StatusCode >= 400 {
		var errResp mpErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: %s", payment.ErrGatewayRequestFailed, errResp.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

// Ensure MercadoPagoAdapter implements the Gateway interface
var _ payment.Gateway = (*MercadoPagoAdapter)(nil)
