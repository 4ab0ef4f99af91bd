package client

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/schugaa/schugaa/pkg/liblinkup"
)

const (
	appDirName      = ".schugaa"
	configFilename  = "config.json"
	sessionFilename = "session.json"
	sensorsFilename = "sensors.json"
)

// KeychainSentinel as password value means the real password lives in the
// platform secret store, owned by the GUI layer.
const KeychainSentinel = "@keychain"

// A Config holds the credential configuration shared with the GUI layer.
// Email and password are base64-encoded in the file; raw values left behind
// by older versions are tolerated.
type Config struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Region   string `json:"region"`
	Unit     string `json:"unit"`
}

// A SecretLookup resolves a KeychainSentinel password from the platform
// secret store. A nil lookup means no secret store is available.
type SecretLookup func(email string) (string, error)

// Dir returns the user-scoped application directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not locate home directory")
	}
	dir := filepath.Join(home, appDirName)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrap(err, "could not create application directory")
	}
	return dir, nil
}

// LoadConfig reads the credential configuration from the application
// directory.
func LoadConfig() (Config, error) {
	var cfg Config

	dir, err := Dir()
	if err != nil {
		return cfg, err
	}

	payload, err := os.ReadFile(filepath.Join(dir, configFilename))
	if err != nil {
		return cfg, errors.Wrap(err, "could not read config")
	}

	err = json.Unmarshal(payload, &cfg)
	return cfg, errors.Wrap(err, "could not parse config")
}

// SaveConfig stores the credential configuration, restricted to the owner.
func SaveConfig(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return errors.Wrap(err, "could not serialize config")
	}

	return atomicWrite(filepath.Join(dir, configFilename), payload)
}

// RemoveConfig removes the credential configuration file.
func RemoveConfig() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, configFilename))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "could not remove config")
}

// Credentials decodes the stored email and password. A sentinel password is
// resolved through lookup; without one the credentials are unusable.
func (c Config) Credentials(lookup SecretLookup) (email, password string, err error) {
	email = decodeMaybeBase64(c.Email)

	if c.Password == KeychainSentinel {
		if lookup == nil {
			return "", "", liblinkup.NewError(liblinkup.KindMissingDependency,
				"password is stored in the platform secret store but no lookup is available")
		}
		password, err = lookup(email)
		return email, password, errors.Wrap(err, "could not read password from secret store")
	}

	return email, decodeMaybeBase64(c.Password), nil
}

// EncodeCredentials fills the config with base64-encoded credentials.
func (c *Config) EncodeCredentials(email, password string) {
	c.Email = base64.StdEncoding.EncodeToString([]byte(email))
	c.Password = base64.StdEncoding.EncodeToString([]byte(password))
}

func decodeMaybeBase64(s string) string {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	return string(decoded)
}
