package dto

import (
	"testing"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRateRequest_Validation(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterValidationsOn(v))

	valid := GetRateRequest{From: "eur", To: "USD", Date: "2024-01-10", Source: "ecb"}
	assert.NoError(t, v.Struct(valid))
	assert.Equal(t, domain.Daily, valid.FrequencyOrDefault())

	tests := []struct {
		name   string
		mutate func(*GetRateRequest)
		field  string
	}{
		{"unknown from", func(r *GetRateRequest) { r.From = "XYZ" }, "From"},
		{"missing to", func(r *GetRateRequest) { r.To = "" }, "To"},
		{"bad date", func(r *GetRateRequest) { r.Date = "10/01/2024" }, "Date"},
		{"unknown source", func(r *GetRateRequest) { r.Source = "ACME" }, "Source"},
		{"unknown frequency", func(r *GetRateRequest) { r.Frequency = "Hourly" }, "Frequency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := v.Struct(req)
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestToListProvidersResponse(t *testing.T) {
	resp := ToListProvidersResponse([]domain.ForexProvider{{
		Source: domain.SourceMNB, BaseCurrency: domain.HUF, QuoteConvention: domain.Direct,
		SupportedFrequencies: []domain.Frequency{domain.Daily, domain.Monthly},
	}})
	require.Len(t, resp.Providers, 1)
	assert.Equal(t, "MNB", resp.Providers[0].Source)
	assert.Equal(t, []string{"Daily", "Monthly"}, resp.Providers[0].Frequencies)
}
