package liblinkup

import "time"

// RestoreMargin is the safety slack required before expiry when reusing a
// session persisted by a previous process run.
const RestoreMargin = 10 * time.Minute

// A Session contains the authentication state persisted between runs. It is
// written wholesale on every successful login, never partially updated.
type Session struct {
	Token         string `json:"token"`
	AccountIDHash string `json:"accountIdHash"`
	Region        string `json:"region"`
	Endpoint      string `json:"endpoint"`
	ExpiryEpoch   int64  `json:"expiryEpoch"`
}

// Defined returns true if session's fields are defined.
func (s Session) Defined() bool {
	return s.Token != "" && s.Endpoint != "" && s.ExpiryEpoch > 0
}

// ExpiredAt returns true if the token is expired at the given time.
func (s Session) ExpiredAt(t time.Time) bool {
	return !s.Defined() || t.Unix() > s.ExpiryEpoch
}

// UsableAt returns true if the session can be restored at the given time,
// keeping RestoreMargin before expiry.
func (s Session) UsableAt(t time.Time) bool {
	return s.Defined() && t.Unix() < s.ExpiryEpoch-int64(RestoreMargin/time.Second)
}
