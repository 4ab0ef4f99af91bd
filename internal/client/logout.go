package client

import "github.com/pkg/errors"

// Logout removes the credential configuration and the persisted session and
// sensor registry. The API has no logout endpoint; forgetting the token is
// all there is.
func Logout() error {
	if err := RemoveConfig(); err != nil {
		return err
	}

	store, err := DefaultSessionStore()
	if err != nil {
		return err
	}
	if err = store.Clear(); err != nil {
		return errors.Wrap(err, "could not clear session")
	}

	tracker, err := DefaultSensorTracker()
	if err != nil {
		return err
	}
	return tracker.Clear()
}
