package domain

// RawTrade is one message as delivered by the pump.fun trade feed. The feed
// collaborator decodes JSON into this shape; the normalizer turns it into a
// TradeEvent or rejects it.
type RawTrade struct {
	TxType           string  `json:"txType"`
	TraderPublicKey  string  `json:"traderPublicKey"`
	Mint             string  `json:"mint"`
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol"`
	SolAmount        float64 `json:"solAmount"`
	TokenAmount      float64 `json:"tokenAmount"`
	Signature        string  `json:"signature"`
	TimestampMs      int64   `json:"timestamp"` // milliseconds; 0 when absent
}
