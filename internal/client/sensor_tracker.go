package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Default wear durations per sensor hardware generation. Serials of 10+
// characters belong to the newer generation worn for 15 days.
const (
	sensorDuration      = 14 * 24 * time.Hour
	longSensorDuration  = 15 * 24 * time.Hour
	longSerialMinLength = 10
)

// A SensorRecord pins the first time a physical sensor was observed. The
// first observation is authoritative: the API has been seen reporting
// drifting activation times for the same serial.
type SensorRecord struct {
	FirstSeen          string `json:"firstSeen"`
	FirstSeenEpoch     int64  `json:"firstSeenEpoch"`
	APIActivationEpoch int64  `json:"apiActivationEpoch,omitempty"`
}

// A SensorTracker keeps an append-only registry of observed sensors, keyed
// by serial number, persisted as a JSON map.
type SensorTracker struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	records map[string]SensorRecord
}

// NewSensorTracker loads the registry at path. A missing or unreadable file
// starts an empty registry; the tracker is an observation cache, not a
// source of truth worth failing over.
func NewSensorTracker(path string) *SensorTracker {
	t := &SensorTracker{
		path:    path,
		now:     time.Now,
		records: make(map[string]SensorRecord),
	}

	payload, err := os.ReadFile(path)
	if err == nil {
		var records map[string]SensorRecord
		if err = json.Unmarshal(payload, &records); err == nil {
			t.records = records
		}
	}
	return t
}

// DefaultSensorTracker returns a tracker at the user-scoped sensors path.
func DefaultSensorTracker() (*SensorTracker, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return NewSensorTracker(filepath.Join(dir, sensorsFilename)), nil
}

// Resolve returns the effective activation epoch for the given serial. A
// known serial returns its recorded first-seen time regardless of what the
// API reports now; a new serial is registered at the current time and
// persisted immediately. Without a serial the API value passes through
// unchanged. Zero means unknown.
func (t *SensorTracker) Resolve(serial string, apiActivation int64) int64 {
	if serial == "" {
		return apiActivation
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if rec, ok := t.records[serial]; ok {
		return rec.FirstSeenEpoch
	}

	now := t.now()
	t.records[serial] = SensorRecord{
		FirstSeen:          now.UTC().Format(time.RFC3339),
		FirstSeenEpoch:     now.Unix(),
		APIActivationEpoch: apiActivation,
	}
	t.persist()
	return now.Unix()
}

// EstimateExpiry derives the expiry epoch from an activation epoch and the
// wear duration inferred from the serial.
func (t *SensorTracker) EstimateExpiry(activation int64, serial string) int64 {
	d := sensorDuration
	if len(serial) >= longSerialMinLength {
		d = longSensorDuration
	}
	return activation + int64(d/time.Second)
}

// persist writes the registry wholesale; callers hold t.mu.
func (t *SensorTracker) persist() {
	payload, err := json.MarshalIndent(t.records, "", "    ")
	if err != nil {
		return
	}
	_ = atomicWrite(t.path, payload)
}

// Records returns a copy of the registry, for inspection.
func (t *SensorTracker) Records() map[string]SensorRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := make(map[string]SensorRecord, len(t.records))
	for serial, rec := range t.records {
		records[serial] = rec
	}
	return records
}

// Clear removes the persisted registry.
func (t *SensorTracker) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = make(map[string]SensorRecord)
	err := os.Remove(t.path)
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "could not remove sensor registry")
}
