package services

// Per-1000-token output prices in USD, matching the billing table the product
// launched with. Unknown models are billed at the gpt-3.5-turbo rate.
var modelOutputPricePer1000 = map[string]float64{
	"gpt-4":             0.06,
	"gpt-4-32k":         0.12,
	"gpt-3.5-turbo":     0.002,
	"gpt-3.5-turbo-16k": 0.004,
}

const fallbackPricingModel = "gpt-3.5-turbo"

func CostForTokens(model string, tokens int64) float64 {
	price, known := modelOutputPricePer1000[model]
	if !known {
		price = modelOutputPricePer1000[fallbackPricingModel]
	}
	return float64(tokens) / 1000 * price
}
