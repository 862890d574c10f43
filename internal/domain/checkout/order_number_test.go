package checkout

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		number := GenerateOrderNumber("VST", now)
		assert.True(t, OrderNumberPattern.MatchString(number), "got %q", number)
		assert.True(t, strings.HasPrefix(number, "VST-20260901-"))
	}
}

func TestGenerateOrderNumber_EmbedsUTCDate(t *testing.T) {
	// 23:30 in São Paulo is already the next day in UTC
	loc := time.FixedZone("BRT", -3*3600)
	now := time.Date(2026, 9, 1, 23, 30, 0, 0, loc)

	number := GenerateOrderNumber("VST", now)
	assert.True(t, strings.HasPrefix(number, "VST-20260902-"))
}

func TestGenerateOrderNumber_DefaultPrefix(t *testing.T) {
	number := GenerateOrderNumber("", time.Now())
	assert.True(t, strings.HasPrefix(number, DefaultOrderNumberPrefix+"-"))
	assert.True(t, OrderNumberPattern.MatchString(number))
}

func TestGenerateVerificationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code := GenerateVerificationCode()
		assert.True(t, VerificationCodePattern.MatchString(code), "got %q", code)
		for _, r := range code {
			assert.Contains(t, verificationCodeAlphabet, string(r))
		}
		seen[code] = true
	}
	// 200 draws from a 31^8 space should not collide
	assert.Greater(t, len(seen), 195)
}

func TestMapGatewayStatus(t *testing.T) {
	tests := []struct {
		gateway string
		status  OrderStatus
		ok      bool
	}{
		{"approved", OrderStatusPaid, true},
		{"rejected", OrderStatusFailed, true},
		{"cancelled", OrderStatusFailed, true},
		{"pending", OrderStatusPending, true},
		{"in_process", OrderStatusPending, true},
		{"charged_back", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.gateway, func(t *testing.T) {
			status, ok := MapGatewayStatus(tt.gateway)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.status, status)
		})
	}
}
