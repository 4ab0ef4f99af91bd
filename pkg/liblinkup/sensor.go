package liblinkup

import "github.com/valyala/fastjson"

// expiryKeys is the ordered set of field names probed for an explicit sensor
// expiry. Observed payloads are inconsistent about which one they carry; the
// first that normalizes to an epoch wins. The order is part of the behavior
// and is pinned by a test.
var expiryKeys = []string{
	"e", "exp", "expires", "expiration",
	"sensorExpires", "sensorExpiration",
	"end", "endDate", "endTime",
}

// A SensorInfo holds whatever sensor state could be salvaged from a raw graph
// payload, independently of the strict schema.
type SensorInfo struct {
	Serial           string
	Activation       int64
	HasActivation    bool
	Expiry           int64
	HasExpiry        bool
	ConnectionStatus int
	HasStatus        bool
}

// ProbeSensorInfo extracts sensor activation, expiry, serial and connection
// status from a raw graph payload. It tries data.connection.sensor first and
// falls back to scanning data.activeSensors. It never fails: a payload with
// nothing usable yields a zero SensorInfo.
func ProbeSensorInfo(raw []byte) SensorInfo {
	var info SensorInfo

	v, err := fastjson.ParseBytes(raw)
	if err != nil {
		return info
	}

	if status := v.Get("data", "connection", "status"); status != nil {
		if n, err := status.Int(); err == nil {
			info.ConnectionStatus = n
			info.HasStatus = true
		}
	}

	if sensor := v.Get("data", "connection", "sensor"); sensor != nil {
		probeSensorObject(sensor, &info)
	}

	if info.Serial != "" && info.HasExpiry {
		return info
	}

	actives := v.GetArray("data", "activeSensors")
	for _, entry := range actives {
		sensor := entry.Get("sensor")
		if sensor == nil {
			sensor = entry
		}
		probeSensorObject(sensor, &info)
		if !info.HasExpiry {
			probeExpiry(entry, &info)
		}
		if info.Serial != "" && info.HasExpiry {
			break
		}
	}

	return info
}

func probeSensorObject(sensor *fastjson.Value, info *SensorInfo) {
	if info.Serial == "" {
		if sn := sensor.GetStringBytes("sn"); len(sn) > 0 {
			info.Serial = string(sn)
		}
	}
	if !info.HasActivation {
		if epoch, ok := normalizeJSONValue(sensor.Get("a")); ok {
			info.Activation = epoch
			info.HasActivation = true
		}
	}
	if !info.HasExpiry {
		probeExpiry(sensor, info)
	}
}

func probeExpiry(obj *fastjson.Value, info *SensorInfo) {
	for _, key := range expiryKeys {
		if epoch, ok := normalizeJSONValue(obj.Get(key)); ok {
			info.Expiry = epoch
			info.HasExpiry = true
			return
		}
	}
}

func normalizeJSONValue(v *fastjson.Value) (int64, bool) {
	if v == nil {
		return 0, false
	}
	switch v.Type() {
	case fastjson.TypeNumber:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return NormalizeTimestamp(f)
	case fastjson.TypeString:
		b, err := v.StringBytes()
		if err != nil {
			return 0, false
		}
		return NormalizeTimestamp(string(b))
	}
	return 0, false
}
