package client

import (
	"github.com/schugaa/schugaa/pkg/liblinkup"
)

// fakeClient implements liblinkup.Client with pluggable behavior.
type fakeClient struct {
	endpoint string
	token    string
	account  string

	loginFn       func(email, password string) (liblinkup.LoginResult, error)
	connectionsFn func() ([]liblinkup.Patient, error)
	graphFn       func(patientID string) (*liblinkup.GraphResponse, []byte, error)

	loginCalls int
	graphCalls int
}

func (f *fakeClient) Login(email, password string) (liblinkup.LoginResult, error) {
	f.loginCalls++
	return f.loginFn(email, password)
}

func (f *fakeClient) Connections() ([]liblinkup.Patient, error) {
	return f.connectionsFn()
}

func (f *fakeClient) Graph(patientID string) (*liblinkup.GraphResponse, []byte, error) {
	f.graphCalls++
	return f.graphFn(patientID)
}

func (f *fakeClient) Token() string              { return f.token }
func (f *fakeClient) SetToken(token string)      { f.token = token }
func (f *fakeClient) AccountIDHash() string      { return f.account }
func (f *fakeClient) SetAccountIDHash(h string)  { f.account = h }
func (f *fakeClient) Endpoint() string           { return f.endpoint }
func (f *fakeClient) SetEndpoint(endpoint string) { f.endpoint = endpoint }
