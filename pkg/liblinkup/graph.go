package liblinkup

// Canonical trend codes, direction and rate of change of the latest sample.
const (
	TrendFallingFast = 1
	TrendFalling     = 2
	TrendStable      = 3
	TrendRising      = 4
	TrendRisingFast  = 5
)

type (
	// A Patient is one entry of the connections list.
	Patient struct {
		PatientID string `json:"patientId"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	// A Measurement is a single glucose sample as reported by the API.
	Measurement struct {
		FactoryTimestamp string  `json:"FactoryTimestamp"`
		Timestamp        string  `json:"Timestamp"`
		Value            float64 `json:"Value"`
		ValueInMgPerDl   float64 `json:"ValueInMgPerDl"`
		TrendArrow       int     `json:"TrendArrow"`
	}

	// A SensorBlock describes the physical sensor attached to a connection.
	SensorBlock struct {
		DeviceID   string `json:"deviceId"`
		Serial     string `json:"sn"`
		Activation int64  `json:"a"`
	}

	// A Connection is the current state of a sensor/app pairing.
	Connection struct {
		PatientID          string       `json:"patientId"`
		Status             *int         `json:"status"`
		GlucoseMeasurement *Measurement `json:"glucoseMeasurement"`
		Sensor             *SensorBlock `json:"sensor"`
	}

	// A GraphResponse is the typed shape of the graph endpoint payload.
	GraphResponse struct {
		Status int `json:"status"`
		Data   struct {
			Connection Connection    `json:"connection"`
			GraphData  []Measurement `json:"graphData"`
		} `json:"data"`
	}
)

// Epoch derives the sample's epoch seconds from its display timestamp,
// falling back to the factory timestamp.
func (m *Measurement) Epoch() (int64, bool) {
	if t, err := ParseDisplayTime(m.Timestamp); err == nil {
		return t.Unix(), true
	}
	return NormalizeTimestamp(m.FactoryTimestamp)
}

// MgPerDl returns the sample value in mg/dL, whichever field carries it.
func (m *Measurement) MgPerDl() float64 {
	if m.ValueInMgPerDl > 0 {
		return m.ValueInMgPerDl
	}
	return m.Value
}

// Validate enforces the strict payload schema. A nil current measurement is
// the common failure: signal loss, or a wrong-region payload served to an
// un-redirected session.
func (r *GraphResponse) Validate() error {
	m := r.Data.Connection.GlucoseMeasurement
	if m == nil {
		return NewError(KindValidation, "no current glucose measurement")
	}
	if _, ok := m.Epoch(); !ok {
		return NewError(KindValidation, "current measurement has no parseable timestamp")
	}
	return nil
}

// CanonicalTrend maps the vendor trend enumeration to the canonical 1-5
// range. Absent or unrecognized trends map to stable.
func CanonicalTrend(raw int) int {
	if raw < TrendFallingFast || raw > TrendRisingFast {
		return TrendStable
	}
	return raw
}
