package client

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/schugaa/schugaa/pkg/liblinkup"
)

// A SessionStore persists the authentication session between process runs.
// The record is written wholesale; there is no partial update.
type SessionStore struct {
	path string
}

// NewSessionStore returns a store writing to the given path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionStore returns a store at the user-scoped session path.
func DefaultSessionStore() (*SessionStore, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return NewSessionStore(filepath.Join(dir, sessionFilename)), nil
}

// Load reads the persisted session. A missing file yields a zero session,
// not an error.
func (s *SessionStore) Load() (liblinkup.Session, error) {
	var session liblinkup.Session

	payload, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return session, nil
	}
	if err != nil {
		return session, errors.Wrap(err, "could not read session")
	}

	err = json.Unmarshal(payload, &session)
	return session, errors.Wrap(err, "could not parse session")
}

// Save overwrites the persisted session.
func (s *SessionStore) Save(session liblinkup.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "could not serialize session")
	}
	return atomicWrite(s.path, payload)
}

// Clear removes the persisted session.
func (s *SessionStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "could not remove session")
}

// atomicWrite writes payload owner-only and renames it into place so readers
// never observe a torn file.
func atomicWrite(path string, payload []byte) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", tmp)
	}

	if _, err = f.Write(payload); err != nil {
		f.Close()
		return errors.Wrap(err, "could not write file")
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "could not sync file")
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "could not close file")
	}

	return errors.Wrap(os.Rename(tmp, path), "could not move file into place")
}
