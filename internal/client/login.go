package client

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Login prompts for LibreLinkUp credentials, verifies them with a full fetch
// cycle, and saves the configuration.
func Login() error {
	cfg := Config{}

	email, err := readline.Line("Email: ")
	if err != nil {
		return errors.Wrap(err, "could not read email from stdin")
	}

	password, err := readline.Password("Password: ")
	if err != nil {
		return errors.Wrap(err, "could not read password from stdin")
	}

	region, err := readline.Line(fmt.Sprintf("Region [%s]: ", DefaultRegion))
	if err != nil {
		return errors.Wrap(err, "could not read region from stdin")
	}
	cfg.Region = strings.ToLower(strings.TrimSpace(region))
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	unit, err := readline.Line("Unit [mg/dL]: ")
	if err != nil {
		return errors.Wrap(err, "could not read unit from stdin")
	}
	cfg.Unit = strings.TrimSpace(unit)
	if cfg.Unit == "" {
		cfg.Unit = "mg/dL"
	}

	//
	// Verify the credentials with a full fetch cycle before saving anything.

	settings, err := LoadSettings()
	if err != nil {
		return err
	}

	log := logrus.New()
	s, err := buildStack(cfg, settings, strings.TrimSpace(email), string(password), log)
	if err != nil {
		return err
	}

	if err = s.auth.Login(); err != nil {
		return errors.Wrap(err, "could not login")
	}
	if _, err = s.agg.FetchLatestReading(); err != nil {
		return errors.Wrap(err, "could not verify credentials")
	}

	cfg.EncodeCredentials(strings.TrimSpace(email), string(password))
	fmt.Println("Login successful.")
	return SaveConfig(cfg)
}
