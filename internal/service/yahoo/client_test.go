package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestHistoryDropsNullAndNonPositiveCloses(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"symbol":"IVV","regularMarketPrice":480.17},
		"timestamp":[1700000000,1700086400,1700172800,1700259200],
		"indicators":{"adjclose":[{"adjclose":[478.5,null,-1,480.17]}],"quote":[{"close":[478.5,null,-1,480.17]}]}}],
		"error":null}}`
	srv := newTestServer(t, body, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	s, err := c.History(context.Background(), "IVV", 730)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, 478.5, s.Points[0].Price)
	assert.Equal(t, 480.17, s.Points[1].Price)
	assert.True(t, s.Points[0].Time.Before(s.Points[1].Time))
}

func TestHistoryFallsBackToRawCloses(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"symbol":"KRW=X"},
		"timestamp":[1700000000,1700086400],
		"indicators":{"adjclose":[],"quote":[{"close":[1344.2,1351.9]}]}}],
		"error":null}}`
	srv := newTestServer(t, body, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	s, err := c.History(context.Background(), "KRW=X", 30)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, 1351.9, s.Points[1].Price)
}

func TestHistoryEmptyOnAPIError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`
	srv := newTestServer(t, body, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	s, err := c.History(context.Background(), "NOPE", 730)
	assert.Error(t, err)
	assert.True(t, s.Empty())
	assert.Equal(t, "NOPE", s.Symbol)
}

func TestHistoryEmptyOnHTTPFailure(t *testing.T) {
	srv := newTestServer(t, "upstream broke", http.StatusBadGateway)
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	s, err := c.History(context.Background(), "IVV", 730)
	assert.Error(t, err)
	assert.True(t, s.Empty())
}

func TestSpotUsesRegularMarketPrice(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"symbol":"KRW=X","regularMarketPrice":1349.55},
		"timestamp":[1700000000],
		"indicators":{"adjclose":[{"adjclose":[1344.2]}],"quote":[{"close":[1344.2]}]}}],
		"error":null}}`
	srv := newTestServer(t, body, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	rate, err := c.Spot(context.Background(), "KRW=X")
	require.NoError(t, err)
	assert.Equal(t, 1349.55, rate)
}

func TestSpotFallsBackToLastClose(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"symbol":"KRW=X"},
		"timestamp":[1700000000,1700086400],
		"indicators":{"adjclose":[{"adjclose":[1344.2,null]}],"quote":[{"close":[1344.2,null]}]}}],
		"error":null}}`
	srv := newTestServer(t, body, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	rate, err := c.Spot(context.Background(), "KRW=X")
	require.NoError(t, err)
	assert.Equal(t, 1344.2, rate)
}

func TestSpotErrorWhenNothingUsable(t *testing.T) {
	body := `{"chart":{"result":[],"error":null}}`
	srv := newTestServer(t, body, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Spot(context.Background(), "KRW=X")
	assert.Error(t, err)
}
