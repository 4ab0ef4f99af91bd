package client

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/schugaa/schugaa/pkg/liblinkup"
	"github.com/sirupsen/logrus"
)

// DefaultRegion is used when the configuration does not name one.
const DefaultRegion = "eu"

// A stack is the fully wired fetch pipeline behind every CLI operation.
type stack struct {
	cfg      Config
	settings Settings
	client   liblinkup.Client
	auth     *AuthSession
	tracker  *SensorTracker
	agg      *Aggregator
}

func newStack(lookup SecretLookup, log logrus.FieldLogger) (*stack, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "could not load config, did you login?")
	}

	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}

	email, password, err := cfg.Credentials(lookup)
	if err != nil {
		return nil, err
	}

	s, err := buildStack(cfg, settings, email, password, log)
	if err != nil {
		return nil, err
	}
	s.auth.Restore()
	return s, nil
}

func buildStack(cfg Config, settings Settings, email, password string, log logrus.FieldLogger) (*stack, error) {
	regions, err := liblinkup.NewRegions(settings.Regions)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	httpc := &http.Client{Timeout: settings.HTTPTimeout}
	c, err := liblinkup.NewClient(httpc, liblinkup.DefaultHeaders(), regions.EndpointFor(region))
	if err != nil {
		return nil, err
	}

	store, err := DefaultSessionStore()
	if err != nil {
		return nil, err
	}
	tracker, err := DefaultSensorTracker()
	if err != nil {
		return nil, err
	}

	auth := NewAuthSession(c, regions, store, email, password, region, settings.SessionTTL, log)

	return &stack{
		cfg:      cfg,
		settings: settings,
		client:   c,
		auth:     auth,
		tracker:  tracker,
		agg:      NewAggregator(auth, c, tracker, log),
	}, nil
}
