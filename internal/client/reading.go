package client

// MaxHistory bounds the history sequence; older samples are dropped first.
const MaxHistory = 100

// MmolPerLFactor converts mg/dL values to mmol/L for display.
const MmolPerLFactor = 18.0182

// A Sample is one normalized glucose measurement.
type Sample struct {
	Value            float64 `json:"value"`
	TimestampEpoch   int64   `json:"timestampEpoch"`
	Timestamp        string  `json:"timestamp"`
	FactoryTimestamp string  `json:"factoryTimestamp,omitempty"`
}

// A Reading is the unified result of a fetch cycle, the one record the
// presentation layer renders. Nil fields mean "no current data", which is a
// legitimate state distinct from a failed fetch.
type Reading struct {
	Value            *float64 `json:"value"`
	TrendCode        *int     `json:"trendCode"`
	Timestamp        *string  `json:"timestamp"`
	History          []Sample `json:"history"`
	ConnectionStatus *int     `json:"connectionStatus"`
	SensorActivated  *int64   `json:"sensorActivatedEpoch"`
	SensorExpires    *int64   `json:"sensorExpiresEpoch"`
	ErrorKind        *string  `json:"errorKind"`
}

// HasValue returns true when the reading carries a current measurement.
func (r Reading) HasValue() bool {
	return r.Value != nil
}
