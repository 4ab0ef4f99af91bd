package liblinkup

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds every HTTP call. The pipeline has no mid-request
// cancellation, so a hung call must time out on its own.
const DefaultTimeout = 20 * time.Second

type (
	// A Client defines all interactions that can be performed on a
	// LibreLinkUp regional endpoint.
	Client interface {
		// Login authenticates with email and password. The result is either
		// an authenticated ticket or a region redirect.
		Login(email, password string) (LoginResult, error)
		// Connections returns the list of patients linked to the account.
		Connections() ([]Patient, error)
		// Graph returns the graph payload for a patient: the strictly typed
		// decode and the raw body for defensive probing. A payload that does
		// not match the strict schema yields a validation error alongside
		// the raw body.
		Graph(patientID string) (*GraphResponse, []byte, error)
		// Token returns the bearer token used for authenticated requests.
		Token() string
		// SetToken sets the bearer token used for authenticated requests.
		SetToken(token string)
		// AccountIDHash returns the derived account identifier sent with
		// authenticated requests.
		AccountIDHash() string
		// SetAccountIDHash sets the derived account identifier.
		SetAccountIDHash(hash string)
		// Endpoint returns the active regional API base.
		Endpoint() string
		// SetEndpoint switches the active regional API base, typically after
		// a server-issued redirect.
		SetEndpoint(endpoint string)
	}

	// Headers holds the fixed vendor headers sent with every request. It
	// replaces the header table the official apps carry as shared state; an
	// explicit value is passed to the constructor instead.
	Headers struct {
		Product   string
		Version   string
		Culture   string
		UserAgent string
	}

	// A LoginResult is either an authenticated ticket or a region redirect.
	LoginResult struct {
		Redirect      bool
		Region        string
		Token         string
		Duration      int64 // advertised ticket lifetime in seconds, not trusted
		AccountIDHash string
	}

	p      map[string]any
	client struct {
		http     *http.Client
		headers  Headers
		endpoint string
		token    string
		account  string
	}
)

// DefaultHeaders returns the header set the vendor's Android app sends.
func DefaultHeaders() Headers {
	return Headers{
		Product:   "llu.android",
		Version:   "4.16.0",
		Culture:   "en-US",
		UserAgent: "LibreLinkUp/4.16.0 (com.abbott.librelinkup; build:4.16.0; Android 14; 34) OkHttp/4.12.0",
	}
}

// NewDefaultClient returns a new Client with default HTTP client and headers.
func NewDefaultClient(endpoint string) (Client, error) {
	return NewClient(&http.Client{Timeout: DefaultTimeout}, DefaultHeaders(), endpoint)
}

// NewClient returns a new Client.
func NewClient(c *http.Client, headers Headers, endpoint string) (Client, error) {
	_, err := url.Parse(endpoint)
	return &client{http: c, headers: headers, endpoint: endpoint}, errors.Wrap(err, "could not parse endpoint")
}

func (c *client) Login(email, password string) (LoginResult, error) {
	var result LoginResult

	body, err := json.Marshal(p{"email": email, "password": password})
	if err != nil {
		return result, errors.Wrap(err, "could not serialize email & password")
	}

	req, err := c.newRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	if err != nil {
		return result, errors.Wrap(err, "could not build request")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return result, errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return result, parseAPIError(res.Body, res.StatusCode)
	}

	var login struct {
		Status int `json:"status"`
		Data   struct {
			Redirect   bool   `json:"redirect"`
			Region     string `json:"region"`
			AuthTicket struct {
				Token    string `json:"token"`
				Duration int64  `json:"duration"`
			} `json:"authTicket"`
			User struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	dec := json.NewDecoder(res.Body)
	if err = dec.Decode(&login); err != nil {
		return result, errors.Wrap(err, "could not parse response")
	}

	if login.Data.Redirect {
		result.Redirect = true
		result.Region = login.Data.Region
		return result, nil
	}

	if login.Data.AuthTicket.Token == "" {
		return result, NewError(KindLoginFailed, fmt.Sprintf("login rejected (status %d)", login.Status))
	}

	result.Token = login.Data.AuthTicket.Token
	result.Duration = login.Data.AuthTicket.Duration
	if login.Data.User.ID != "" {
		sum := sha256.Sum256([]byte(login.Data.User.ID))
		result.AccountIDHash = hex.EncodeToString(sum[:])
	}

	c.token = result.Token
	c.account = result.AccountIDHash
	return result, nil
}

func (c *client) Connections() ([]Patient, error) {
	req, err := c.newRequest(http.MethodGet, "/connections", nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, parseAPIError(res.Body, res.StatusCode)
	}

	var connections struct {
		Data []Patient `json:"data"`
	}
	dec := json.NewDecoder(res.Body)
	if err = dec.Decode(&connections); err != nil {
		return nil, NewError(KindValidation, "could not parse connections list: "+err.Error())
	}
	return connections.Data, nil
}

func (c *client) Graph(patientID string) (*GraphResponse, []byte, error) {
	req, err := c.newRequest(http.MethodGet, "/connections/"+patientID+"/graph", nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not build request")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, nil, parseAPIError(res.Body, res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not read response")
	}

	var graph GraphResponse
	if err = json.Unmarshal(raw, &graph); err != nil {
		return nil, raw, NewError(KindValidation, "could not parse graph payload: "+err.Error())
	}
	return &graph, raw, nil
}

func (c *client) Token() string {
	return c.token
}

func (c *client) SetToken(token string) {
	c.token = token
}

func (c *client) AccountIDHash() string {
	return c.account
}

func (c *client) SetAccountIDHash(hash string) {
	c.account = hash
}

func (c *client) Endpoint() string {
	return c.endpoint
}

func (c *client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

func (c *client) newRequest(method, route string, body io.Reader) (*http.Request, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse endpoint")
	}
	u.Path = path.Join(u.Path, route)

	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Close = true
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.headers.UserAgent)
	req.Header.Set("product", c.headers.Product)
	req.Header.Set("version", c.headers.Version)
	req.Header.Set("culture", c.headers.Culture)
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	if c.account != "" {
		req.Header.Set("Account-Id", c.account)
	}
	return req, nil
}
