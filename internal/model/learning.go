package model

// PatternContext summarizes the technical state of the look-back window
// preceding a successful buy setup.
type PatternContext struct {
	EMATrend         string  `json:"emaTrend"`
	ADXStrength      string  `json:"adxStrength"`
	VolumeMultiplier float64 `json:"volumeMultiplier"`
}

// LearningResult is one historically successful buy setup found by the
// pattern miner. Only profitable candidates are emitted, so SuccessDate is
// always populated.
type LearningResult struct {
	BuyDate       string         `json:"buyDate"`
	SuccessDate   string         `json:"successDate"`
	MaxReturnPct  float64        `json:"maxReturnPct"`
	Context       PatternContext `json:"context"`
	ContextWindow Series         `json:"contextWindow"`
}
