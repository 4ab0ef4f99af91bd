package client

import (
	"sort"

	"github.com/schugaa/schugaa/pkg/liblinkup"
	"github.com/sirupsen/logrus"
)

// An Aggregator orchestrates a full fetch cycle: ensure-session, fetch
// patient, fetch graph, normalize, merge with sensor state.
type Aggregator struct {
	auth    *AuthSession
	client  liblinkup.Client
	tracker *SensorTracker
	log     logrus.FieldLogger
}

// NewAggregator returns an Aggregator on top of an authenticated session.
func NewAggregator(auth *AuthSession, c liblinkup.Client, tracker *SensorTracker, log logrus.FieldLogger) *Aggregator {
	return &Aggregator{auth: auth, client: c, tracker: tracker, log: log}
}

// FetchLatestReading runs one fetch cycle and returns a normalized reading
// or a structured error. An auth rejection or a patients-list validation
// failure triggers exactly one relogin and retry; rate limiting is returned
// immediately so the caller can back off on its own schedule.
func (g *Aggregator) FetchLatestReading() (Reading, error) {
	relogged := false
	for {
		reading, err := g.fetchOnce()
		if err == nil {
			return reading, nil
		}
		if liblinkup.IsRateLimit(err) {
			return Reading{}, err
		}
		if relogged {
			return Reading{}, err
		}

		kind := liblinkup.KindOf(err)
		if liblinkup.IsAuthRejection(err) || kind == liblinkup.KindValidation {
			relogged = true
			g.log.WithError(err).Info("relogging after rejected call")
			g.auth.Invalidate()
			if err = g.auth.Login(); err != nil {
				return Reading{}, err
			}
			continue
		}

		return Reading{}, err
	}
}

func (g *Aggregator) fetchOnce() (Reading, error) {
	if err := g.auth.EnsureValid(); err != nil {
		return Reading{}, err
	}

	patients, err := g.client.Connections()
	if err != nil {
		return Reading{}, err
	}
	if len(patients) == 0 {
		return Reading{}, liblinkup.NewError(liblinkup.KindNoPatient, "no linked patients")
	}

	graph, raw, err := g.client.Graph(patients[0].PatientID)
	if err != nil && liblinkup.KindOf(err) != liblinkup.KindValidation {
		return Reading{}, err
	}

	info := liblinkup.ProbeSensorInfo(raw)

	if err != nil || graph.Validate() != nil {
		// Signal loss or schema drift: still a usable answer, not a failure.
		return g.partialReading(info), nil
	}

	return g.assembleReading(graph, info), nil
}

// partialReading carries whatever sensor state survived a payload that
// failed strict validation.
func (g *Aggregator) partialReading(info liblinkup.SensorInfo) Reading {
	reading := Reading{History: []Sample{}}

	kind := string(liblinkup.KindValidation)
	reading.ErrorKind = &kind
	if info.HasStatus {
		status := info.ConnectionStatus
		reading.ConnectionStatus = &status
	}
	g.mergeSensorState(&reading, info, nil)
	return reading
}

func (g *Aggregator) assembleReading(graph *liblinkup.GraphResponse, info liblinkup.SensorInfo) Reading {
	var reading Reading

	current := graph.Data.Connection.GlucoseMeasurement
	currentEpoch, _ := current.Epoch()

	history := make([]Sample, 0, len(graph.Data.GraphData)+1)
	for i := range graph.Data.GraphData {
		m := &graph.Data.GraphData[i]
		epoch, ok := m.Epoch()
		if !ok {
			continue
		}
		history = append(history, Sample{
			Value:            m.MgPerDl(),
			TimestampEpoch:   epoch,
			Timestamp:        m.Timestamp,
			FactoryTimestamp: m.FactoryTimestamp,
		})
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].TimestampEpoch < history[j].TimestampEpoch
	})

	// The current sample may still be trailing in the history payload; drop
	// anything newer than it, then append it only if strictly newer than the
	// last entry so the same point never appears twice.
	for len(history) > 0 && history[len(history)-1].TimestampEpoch > currentEpoch {
		history = history[:len(history)-1]
	}
	if len(history) == 0 || currentEpoch > history[len(history)-1].TimestampEpoch {
		history = append(history, Sample{
			Value:            current.MgPerDl(),
			TimestampEpoch:   currentEpoch,
			Timestamp:        current.Timestamp,
			FactoryTimestamp: current.FactoryTimestamp,
		})
	}
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}
	reading.History = history

	value := current.MgPerDl()
	trend := liblinkup.CanonicalTrend(current.TrendArrow)
	timestamp := current.Timestamp
	reading.Value = &value
	reading.TrendCode = &trend
	reading.Timestamp = &timestamp

	if info.HasStatus {
		status := info.ConnectionStatus
		reading.ConnectionStatus = &status
	} else if graph.Data.Connection.Status != nil {
		status := *graph.Data.Connection.Status
		reading.ConnectionStatus = &status
	}

	g.mergeSensorState(&reading, info, graph.Data.Connection.Sensor)
	return reading
}

// mergeSensorState resolves activation and expiry, preferring values probed
// from the raw payload and falling back to the structured sensor block.
func (g *Aggregator) mergeSensorState(reading *Reading, info liblinkup.SensorInfo, sensor *liblinkup.SensorBlock) {
	serial := info.Serial
	apiActivation := int64(0)
	if info.HasActivation {
		apiActivation = info.Activation
	}
	if serial == "" && sensor != nil {
		serial = sensor.Serial
	}
	if apiActivation == 0 && sensor != nil {
		apiActivation = sensor.Activation
	}

	activation := g.tracker.Resolve(serial, apiActivation)
	if activation == 0 {
		return
	}
	reading.SensorActivated = &activation

	expiry := g.tracker.EstimateExpiry(activation, serial)
	if info.HasExpiry {
		expiry = info.Expiry
	}
	reading.SensorExpires = &expiry
}
