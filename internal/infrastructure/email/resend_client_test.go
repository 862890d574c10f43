package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/shared/valueobject"
)

func paidTestOrder(t *testing.T) *checkout.Order {
	t.Helper()

	cpf, err := valueobject.NewCPF("52998224725")
	require.NoError(t, err)
	addr, err := valueobject.NewAddress("Rua Augusta", "1500", "Consolação", "São Paulo", "SP", "01304001")
	require.NoError(t, err)

	order, err := checkout.NewOrder(checkout.NewOrderParams{
		OrderNumber:   "VST-20260901-4321",
		CustomerName:  "Bruno Lima",
		CustomerEmail: "bruno@example.com",
		TaxID:         cpf,
		Address:       addr,
		Subtotal:      decimal.NewFromFloat(89.90),
		ShippingCost:  decimal.NewFromFloat(20.10),
		TotalAmount:   decimal.NewFromFloat(110.00),
	})
	require.NoError(t, err)

	_, err = order.AddItem(uuid.New(), "Camiseta Algodão", "", "G", "Preta", "Algodão", "",
		decimal.NewFromFloat(89.90), 1)
	require.NoError(t, err)

	order.VerificationCode = "K7M2P9QR"
	return order
}

func TestResendClient_SendOrderConfirmation(t *testing.T) {
	t.Run("sends rendered confirmation", func(t *testing.T) {
		var captured sendRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/emails", r.URL.Path)
			assert.Equal(t, "Bearer re_test_key", r.Header.Get("Authorization"))

			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id": "msg-123"}`)
		}))
		defer server.Close()

		client := NewResendClient(Config{
			BaseURL:     server.URL,
			APIKey:      "re_test_key",
			FromAddress: "pedidos@vesti.example.com",
			FromName:    "Vesti",
		})

		err := client.SendOrderConfirmation(context.Background(), paidTestOrder(t))
		require.NoError(t, err)

		assert.Equal(t, "Vesti <pedidos@vesti.example.com>", captured.From)
		assert.Equal(t, []string{"bruno@example.com"}, captured.To)
		assert.Contains(t, captured.Subject, "VST-20260901-4321")
		assert.Contains(t, captured.HTML, "K7M2P9QR")
		assert.Contains(t, captured.HTML, "Camiseta Algod")
		assert.Contains(t, captured.HTML, "110,00")
		require.Len(t, captured.Tags, 1)
		assert.Equal(t, "VST-20260901-4321", captured.Tags[0].Value)
	})

	t.Run("omits verification code block when unset", func(t *testing.T) {
		var captured sendRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id": "msg-456"}`)
		}))
		defer server.Close()

		client := NewResendClient(Config{BaseURL: server.URL, APIKey: "k", FromAddress: "a@b.c", FromName: "V"})

		order := paidTestOrder(t)
		order.VerificationCode = ""

		require.NoError(t, client.SendOrderConfirmation(context.Background(), order))
		assert.NotContains(t, captured.HTML, "verifica")
	})

	t.Run("surfaces provider rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"message": "invalid from address"}`)
		}))
		defer server.Close()

		client := NewResendClient(Config{BaseURL: server.URL, APIKey: "k", FromAddress: "bad", FromName: "V"})

		err := client.SendOrderConfirmation(context.Background(), paidTestOrder(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid from address")
	})

	t.Run("rejects response without message id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{}`)
		}))
		defer server.Close()

		client := NewResendClient(Config{BaseURL: server.URL, APIKey: "k", FromAddress: "a@b.c", FromName: "V"})

		err := client.SendOrderConfirmation(context.Background(), paidTestOrder(t))
		assert.Error(t, err)
	})
}
