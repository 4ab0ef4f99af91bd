package liblinkup_test

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/schugaa/schugaa/pkg/liblinkup"
	"github.com/stretchr/testify/assert"
)

func TestClient_Login(t *testing.T) {
	var seen http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		w.Write([]byte(`{"status":0,"data":{"authTicket":{"token":"tok-1","duration":3600},"user":{"id":"user-1"}}}`))
	}))
	defer ts.Close()

	c, err := liblinkup.NewClient(ts.Client(), liblinkup.DefaultHeaders(), ts.URL)
	assert.NoError(t, err)

	result, err := c.Login("george.abitbol@nowhere.lan", "secret")
	assert.NoError(t, err)
	assert.False(t, result.Redirect)
	assert.Equal(t, "tok-1", result.Token)
	assert.Equal(t, int64(3600), result.Duration)

	sum := sha256.Sum256([]byte("user-1"))
	assert.Equal(t, hex.EncodeToString(sum[:]), result.AccountIDHash)
	assert.Equal(t, result.Token, c.Token())
	assert.Equal(t, result.AccountIDHash, c.AccountIDHash())

	assert.Equal(t, "llu.android", seen.Get("product"))
	assert.Equal(t, "4.16.0", seen.Get("version"))
	assert.NotEmpty(t, seen.Get("User-Agent"))
	assert.Empty(t, seen.Get("Authorization"))
}

func TestClient_LoginRedirect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"data":{"redirect":true,"region":"eu"}}`))
	}))
	defer ts.Close()

	c, err := liblinkup.NewClient(ts.Client(), liblinkup.DefaultHeaders(), ts.URL)
	assert.NoError(t, err)

	result, err := c.Login("a@b.c", "secret")
	assert.NoError(t, err)
	assert.True(t, result.Redirect)
	assert.Equal(t, "eu", result.Region)
}

func TestClient_LoginRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":2,"data":{}}`))
	}))
	defer ts.Close()

	c, _ := liblinkup.NewClient(ts.Client(), liblinkup.DefaultHeaders(), ts.URL)
	_, err := c.Login("a@b.c", "wrong")
	assert.Error(t, err)
	assert.Equal(t, liblinkup.KindLoginFailed, liblinkup.KindOf(err))
}

func TestClient_RateLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"Too Many Requests"}`))
	}))
	defer ts.Close()

	c, _ := liblinkup.NewClient(ts.Client(), liblinkup.DefaultHeaders(), ts.URL)
	_, err := c.Connections()
	assert.Error(t, err)
	assert.True(t, liblinkup.IsRateLimit(err))
	assert.Equal(t, liblinkup.KindRateLimit, liblinkup.KindOf(err))
}

func TestClient_AuthRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer ts.Close()

	c, _ := liblinkup.NewClient(ts.Client(), liblinkup.DefaultHeaders(), ts.URL)
	_, err := c.Connections()
	assert.Error(t, err)
	assert.True(t, liblinkup.IsAuthRejection(err))
	assert.False(t, liblinkup.IsRateLimit(err))
}

func TestClient_Connections(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/connections", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "hash-1", r.Header.Get("Account-Id"))
		w.Write([]byte(`{"status":0,"data":[{"patientId":"p-1","firstName":"George"}]}`))
	}))
	defer ts.Close()

	c, _ := liblinkup.NewClient(ts.Client(), liblinkup.DefaultHeaders(), ts.URL)
	c.SetToken("tok-1")
	c.SetAccountIDHash("hash-1")

	patients, err := c.Connections()
	assert.NoError(t, err)
	assert.Len(t, patients, 1)
	assert.Equal(t, "p-1", patients[0].PatientID)
}

func TestClient_Graph(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/connections/p-1/graph", r.URL.Path)
		w.Write([]byte(`{
			"status": 0,
			"data": {
				"connection": {
					"glucoseMeasurement": {"Timestamp": "01/01/2024 12:00:00 PM", "ValueInMgPerDl": 105, "TrendArrow": 4},
					"sensor": {"sn": "ABC123", "a": 1700000000}
				},
				"graphData": [{"Timestamp": "01/01/2024 11:55:00 AM", "ValueInMgPerDl": 102}]
			}
		}`))
	}))
	defer ts.Close()

	c, _ := liblinkup.NewClient(ts.Client(), liblinkup.DefaultHeaders(), ts.URL)
	c.SetToken("tok-1")

	graph, raw, err := c.Graph("p-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.NoError(t, graph.Validate())
	assert.Equal(t, float64(105), graph.Data.Connection.GlucoseMeasurement.MgPerDl())
	assert.Len(t, graph.Data.GraphData, 1)
}

func TestClient_GraphUnparseable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"graphData":"not an array"}}`))
	}))
	defer ts.Close()

	c, _ := liblinkup.NewClient(ts.Client(), liblinkup.DefaultHeaders(), ts.URL)
	graph, raw, err := c.Graph("p-1")
	assert.Nil(t, graph)
	assert.NotEmpty(t, raw)
	assert.Equal(t, liblinkup.KindValidation, liblinkup.KindOf(err))
}
