package client

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/schugaa/schugaa/pkg/liblinkup"
	"github.com/sirupsen/logrus"
)

// TrendArrows renders canonical trend codes for terminal output.
var TrendArrows = map[int]string{
	liblinkup.TrendFallingFast: "↓",
	liblinkup.TrendFalling:     "↘",
	liblinkup.TrendStable:      "→",
	liblinkup.TrendRising:      "↗",
	liblinkup.TrendRisingFast:  "↑",
}

// Fetch runs one fetch cycle and prints the reading, as JSON when asked.
func Fetch(jsonOut bool) error {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	s, err := newStack(nil, log)
	if err != nil {
		return err
	}

	reading, err := s.agg.FetchLatestReading()
	if err != nil {
		return errors.Wrap(err, "could not fetch reading")
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "    ")
		return errors.Wrap(enc.Encode(reading), "could not serialize reading")
	}

	fmt.Println(RenderReading(reading, s.cfg.Unit))
	return nil
}

// RenderReading formats a reading for humans, converting to mmol/L when the
// unit preference says so.
func RenderReading(reading Reading, unit string) string {
	if !reading.HasValue() {
		if reading.ConnectionStatus != nil {
			return fmt.Sprintf("no current reading (connection status %d)", *reading.ConnectionStatus)
		}
		return "no current reading"
	}

	value := fmt.Sprintf("%.0f mg/dL", *reading.Value)
	if unit == "mmol/L" {
		value = fmt.Sprintf("%.1f mmol/L", *reading.Value/MmolPerLFactor)
	}

	arrow := ""
	if reading.TrendCode != nil {
		arrow = " " + TrendArrows[*reading.TrendCode]
	}

	out := value + arrow
	if reading.Timestamp != nil {
		out += " at " + *reading.Timestamp
	}
	if reading.SensorExpires != nil {
		out += fmt.Sprintf(" (sensor expires %s)", liblinkup.FormatDisplayTime(epochTime(*reading.SensorExpires)))
	}
	return out
}

func epochTime(epoch int64) time.Time {
	return time.Unix(epoch, 0)
}
