package domain

// Sample is one observation of the ice-cream sales dataset
type Sample struct {
	Temperature float64 `json:"temperature_celsius"`
	Sales       float64 `json:"ice_cream_sales"`
}
