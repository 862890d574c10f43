package payment

// Request and response shapes for the Mercado Pago REST API.
// Monetary values travel as plain JSON numbers in BRL.

type mpPreferenceRequest struct {
	Items              []mpPreferenceItem    `json:"items"`
	Payer              *mpPayer              `json:"payer,omitempty"`
	BackURLs           *mpBackURLs           `json:"back_urls,omitempty"`
	AutoReturn         string                `json:"auto_return,omitempty"`
	PaymentMethods     *mpPaymentMethods     `json:"payment_methods,omitempty"`
	NotificationURL    string                `json:"notification_url,omitempty"`
	StatementDescriptor string               `json:"statement_descriptor,omitempty"`
	ExternalReference  string                `json:"external_reference"`
	BinaryMode         bool                  `json:"binary_mode,omitempty"`
	Expires            bool                  `json:"expires,omitempty"`
	ExpirationDateFrom string                `json:"expiration_date_from,omitempty"`
	ExpirationDateTo   string                `json:"expiration_date_to,omitempty"`
}

type mpPreferenceItem struct {
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title"`
	PictureURL string  `json:"picture_url,omitempty"`
	CurrencyID string  `json:"currency_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

type mpPayer struct {
	Name           string            `json:"name,omitempty"`
	Email          string            `json:"email"`
	Phone          *mpPhone          `json:"phone,omitempty"`
	Identification *mpIdentification `json:"identification,omitempty"`
	Address        *mpAddress        `json:"address,omitempty"`
}

type mpPhone struct {
	Number string `json:"number"`
}

type mpIdentification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type mpAddress struct {
	ZipCode      string `json:"zip_code"`
	StreetName   string `json:"street_name"`
	StreetNumber string `json:"street_number"`
}

type mpBackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

type mpPaymentMethods struct {
	ExcludedPaymentMethods []mpExcluded `json:"excluded_payment_methods,omitempty"`
	ExcludedPaymentTypes   []mpExcluded `json:"excluded_payment_types,omitempty"`
	Installments           int          `json:"installments,omitempty"`
}

type mpExcluded struct {
	ID string `json:"id"`
}

type mpPreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
	ExpirationDateTo string `json:"expiration_date_to"`
}

type mpPaymentResponse struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	ExternalReference string  `json:"external_reference"`
	PaymentMethodID   string  `json:"payment_method_id"`
	PaymentTypeID     string  `json:"payment_type_id"`
	Installments      int     `json:"installments"`
	TransactionAmount float64 `json:"transaction_amount"`
	DateApproved      string  `json:"date_approved"`
}

type mpErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
