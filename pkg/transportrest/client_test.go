package transportrest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/departures-rss/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.APIURL = server.URL
	cfg.Timeout = time.Second

	return NewClient(cfg, opts...)
}

func TestDeparturesRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stops/8006336/departures", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("results"))
		assert.Equal(t, "120", r.URL.Query().Get("duration"))
		assert.Equal(t, "de", r.URL.Query().Get("language"))
		assert.Equal(t, "false", r.URL.Query().Get("pretty"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"departures":[
			{"tripId":"1|234","stop":{"id":"8006336"},"line":{"name":"S1"},"direction":"Hannover","when":"2024-01-01T08:05:00+01:00","delay":90,"platform":"3"},
			{"stop":{"id":"8006336"},"line":{"name":"S2"},"direction":"Haste","when":null,"delay":null,"platform":null,"plannedPlatform":"1"}
		]}`))
	})

	departures, err := client.Departures(context.Background(), 10, 120)
	require.NoError(t, err)
	require.Len(t, departures, 2)

	assert.Equal(t, "1|234", departures[0].TripID)
	assert.Equal(t, "S1", departures[0].LineName())
	assert.Equal(t, "Hannover", departures[0].DirectionName())
	assert.Equal(t, 90, *departures[0].Delay)
	assert.Equal(t, "3", departures[0].PlatformName())

	assert.Equal(t, "", departures[1].TripID)
	assert.Equal(t, "", departures[1].When)
	assert.Nil(t, departures[1].Delay)
	assert.Equal(t, "1", departures[1].PlatformName())
}

func TestDeparturesTruncatesToResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"departures":[{"direction":"A"},{"direction":"B"},{"direction":"C"}]}`))
	})

	departures, err := client.Departures(context.Background(), 2, 120)
	require.NoError(t, err)
	require.Len(t, departures, 2)
	assert.Equal(t, "A", departures[0].Direction)
	assert.Equal(t, "B", departures[1].Direction)
}

func TestDeparturesMissingField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"realtimeDataUpdatedAt":1704092700}`))
	})

	departures, err := client.Departures(context.Background(), 10, 120)
	require.NoError(t, err)
	assert.NotNil(t, departures)
	assert.Empty(t, departures)
}

func TestDeparturesErrorKinds(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.Departures(context.Background(), 10, 120)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	})

	t.Run("decode", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"departures":"nope"`))
		})

		_, err := client.Departures(context.Background(), 10, 120)

		var decodeErr *DecodeError
		assert.True(t, errors.As(err, &decodeErr))
	})

	t.Run("timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))

		_, err := client.Departures(context.Background(), 10, 120)

		var transportErr *TransportError
		assert.True(t, errors.As(err, &transportErr))
	})

	t.Run("unreachable", func(t *testing.T) {
		cfg := config.Default()
		cfg.APIURL = "http://127.0.0.1:1"
		client := NewClient(cfg)

		_, err := client.Departures(context.Background(), 10, 120)

		var transportErr *TransportError
		assert.True(t, errors.As(err, &transportErr))
	})
}

func TestStopoversEscapesTripID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trips/1%7C2345%7C0%7C80%7C1012024", r.URL.EscapedPath())
		assert.Equal(t, "true", r.URL.Query().Get("stopovers"))

		w.Write([]byte(`{"trip":{"stopovers":[
			{"stop":{"id":"8000001","name":"Barsinghausen"}},
			{"stop":{"id":"8006336","name":"Wennigsen (Deister) Bahnhof"}},
			{"stop":{"id":"8002586","name":"Hannover-Linden/Fischerhof"},"arrival":"2024-01-01T08:20:00+01:00","arrivalDelay":120},
			{"stop":{"id":"8000152","name":"Hannover Hbf"},"arrival":"2024-01-01T08:27:00+01:00"}
		]}}`))
	})

	stopovers, err := client.Stopovers(context.Background(), "1|2345|0|80|1012024", "8006336")
	require.NoError(t, err)
	require.Len(t, stopovers, 2)
	assert.Equal(t, "Hannover-Linden/Fischerhof", stopovers[0].Stop.Name)
	assert.Equal(t, 120, *stopovers[0].ArrivalDelay)
	assert.Equal(t, "Hannover Hbf", stopovers[1].Stop.Name)
	assert.Nil(t, stopovers[1].ArrivalDelay)
}

func TestStopoversAfter(t *testing.T) {
	stopovers := []Stopover{
		{Stop: Stop{ID: "A"}},
		{Stop: Stop{ID: "B"}},
		{Stop: Stop{ID: "C"}},
		{Stop: Stop{ID: "D"}},
	}

	t.Run("matches current stop", func(t *testing.T) {
		after := StopoversAfter(stopovers, "B", "X")
		assert.Equal(t, []Stopover{{Stop: Stop{ID: "C"}}, {Stop: Stop{ID: "D"}}}, after)
	})

	t.Run("falls back to configured stop", func(t *testing.T) {
		after := StopoversAfter(stopovers, "X", "C")
		assert.Equal(t, []Stopover{{Stop: Stop{ID: "D"}}}, after)
	})

	t.Run("first match wins", func(t *testing.T) {
		after := StopoversAfter(stopovers, "C", "A")
		assert.Len(t, after, 3)
	})

	t.Run("no match", func(t *testing.T) {
		after := StopoversAfter(stopovers, "X", "Y")
		assert.NotNil(t, after)
		assert.Empty(t, after)
	})

	t.Run("last stop", func(t *testing.T) {
		assert.Empty(t, StopoversAfter(stopovers, "D", "Y"))
	})
}
