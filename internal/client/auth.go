package client

import (
	"time"

	"github.com/schugaa/schugaa/pkg/liblinkup"
	"github.com/sirupsen/logrus"
)

const (
	loginAttempts    = 3
	loginBackoffBase = 5 * time.Second
)

// An AuthSession owns login, token refresh, and redirect-driven endpoint
// re-resolution. It is the only writer of the persisted session.
type AuthSession struct {
	client  liblinkup.Client
	regions *liblinkup.Regions
	store   *SessionStore
	log     logrus.FieldLogger

	email    string
	password string
	region   string
	ttl      time.Duration

	session liblinkup.Session

	// test seams
	now   func() time.Time
	sleep func(time.Duration)
}

// NewAuthSession returns an AuthSession for the given credentials. ttl is the
// assumed session lifetime; zero selects the default one hour.
func NewAuthSession(c liblinkup.Client, regions *liblinkup.Regions, store *SessionStore,
	email, password, region string, ttl time.Duration, log logrus.FieldLogger) *AuthSession {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthSession{
		client:   c,
		regions:  regions,
		store:    store,
		log:      log,
		email:    email,
		password: password,
		region:   region,
		ttl:      ttl,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Session returns the current in-memory session.
func (a *AuthSession) Session() liblinkup.Session {
	return a.session
}

// Restore adopts the persisted session if it is still comfortably within its
// lifetime. Returns true when a session was restored.
func (a *AuthSession) Restore() bool {
	session, err := a.store.Load()
	if err != nil {
		a.log.WithError(err).Warn("could not load persisted session")
		return false
	}
	if !session.UsableAt(a.now()) {
		return false
	}

	a.session = session
	a.client.SetToken(session.Token)
	a.client.SetAccountIDHash(session.AccountIDHash)
	a.client.SetEndpoint(session.Endpoint)
	if session.Region != "" {
		a.region = session.Region
	}
	a.log.Info("session restored from disk")
	return true
}

// Login authenticates against the active endpoint. Server redirects switch
// the endpoint and re-enter the loop without consuming a retry slot; a
// redirect to the already-active endpoint is a fatal redirect loop. Errors
// are retried with exponential backoff, three attempts in total.
func (a *AuthSession) Login() error {
	attempts := 0
	for attempts < loginAttempts {
		result, err := a.client.Login(a.email, a.password)
		if err == nil && result.Redirect {
			target := a.regions.EndpointFor(result.Region)
			if target == a.client.Endpoint() {
				return liblinkup.NewError(liblinkup.KindRedirectLoop,
					"redirected to the already-active endpoint "+target)
			}
			a.client.SetEndpoint(target)
			if code, ok := a.regions.CodeFor(target); ok {
				a.region = code
			}
			a.log.WithField("region", result.Region).Info("login redirected")
			continue
		}

		if err == nil {
			now := a.now()
			a.session = liblinkup.Session{
				Token:         result.Token,
				AccountIDHash: result.AccountIDHash,
				Region:        a.region,
				Endpoint:      a.client.Endpoint(),
				ExpiryEpoch:   now.Add(a.ttl).Unix(),
			}
			if err = a.store.Save(a.session); err != nil {
				a.log.WithError(err).Warn("could not persist session")
			}
			return nil
		}

		if liblinkup.IsRateLimit(err) {
			return err
		}

		attempts++
		a.log.WithError(err).WithField("attempt", attempts).Warn("login failed")
		if attempts < loginAttempts {
			a.sleep(loginBackoffBase << (attempts - 1))
		}
	}

	return liblinkup.NewError(liblinkup.KindLoginFailed, "all login attempts exhausted")
}

// EnsureValid logs in when there is no token or the assumed expiry passed.
func (a *AuthSession) EnsureValid() error {
	if a.session.Token == "" || a.session.ExpiredAt(a.now()) {
		return a.Login()
	}
	return nil
}

// Invalidate drops the in-memory token so the next EnsureValid logs in. The
// persisted file is overwritten by the next successful login.
func (a *AuthSession) Invalidate() {
	a.session.Token = ""
	a.client.SetToken("")
}
