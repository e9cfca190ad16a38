package cookie

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	xerrors "kiln-plugin/internal/errors"
	"kiln-plugin/pkg/logger"
)

const samplePayload = `{
  "ok": {
    "data": [
      {
        "agentName": "aixbt",
        "twitterUsernames": ["aixbt_agent"],
        "marketCap": 512345678.123,
        "price": 0.5432,
        "liquidity": 1234567,
        "volume24Hours": 98765.4321,
        "averageImpressionsCount": 12000.5,
        "averageEngagementsCount": 321,
        "followersCount": 450000
      },
      {
        "agentName": null,
        "twitterUsernames": [],
        "marketCap": null,
        "price": "0.12",
        "followersCount": 0
      }
    ],
    "currentPage": 1,
    "totalPages": 200,
    "totalCount": 1000
  }
}`

func newClient(srv *httptest.Server, key string) *Client {
	return NewClient(Config{APIKey: key, BaseURL: srv.URL, HTTPClient: srv.Client(), Logger: logger.Discard()})
}

func TestGetTradingAgents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "cookie-key" {
			t.Errorf("unexpected api key header %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("cookie requests must not carry a bearer token")
		}
		if r.URL.Path != "/v2/agents/agentsPaged" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("interval") != "_7Days" || q.Get("page") != "1" || q.Get("pageSize") != "5" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	resp, err := newClient(srv, "cookie-key").GetTradingAgents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agents := resp.OK.Data
	if len(agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(agents))
	}
	if agents[0].AgentName.Text() != "aixbt" || agents[0].TwitterHandle().Text() != "aixbt_agent" {
		t.Fatalf("unexpected first agent: %+v", agents[0])
	}
	if v, ok := agents[0].Price.Number(); !ok || v != 0.5432 {
		t.Fatalf("expected numeric price, got %v %v", v, ok)
	}
	if _, ok := agents[1].Price.Number(); ok {
		t.Fatalf("string price must not be treated as a number")
	}
	if agents[1].MarketCap.Present() {
		t.Fatalf("null market cap should not be present")
	}
	if agents[1].TwitterHandle().Present() {
		t.Fatalf("empty username list should yield no handle")
	}
}

func TestGetTradingAgentsMissingData(t *testing.T) {
	for _, body := range []string{`{}`, `{"ok":{}}`, `{"ok":null}`, `{"ok":{"data":null}}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := newClient(srv, "k").GetTradingAgents(context.Background())
		srv.Close()
		if !xerrors.HasCode(err, xerrors.CodeShape) {
			t.Fatalf("body %s: expected shape error, got %v", body, err)
		}
	}
}

func TestGetTradingAgentsToleratesMistypedFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":{"data":[
			{"agentName":42,"twitterUsernames":"solo","price":1},
			{"agentName":{"first":"x"},"twitterUsernames":[7,"b"],"followersCount":true}
		]}}`))
	}))
	defer srv.Close()

	resp, err := newClient(srv, "k").GetTradingAgents(context.Background())
	if err != nil {
		t.Fatalf("mistyped optional fields must not fail decoding: %v", err)
	}
	first, second := resp.OK.Data[0], resp.OK.Data[1]
	if name, ok := first.AgentName.Display(); !ok || name != "42" {
		t.Fatalf("numeric agent name should display as text, got %q %v", name, ok)
	}
	if first.TwitterHandle().Present() {
		t.Fatalf("non-array usernames should be treated as missing")
	}
	if v, ok := first.Price.Number(); !ok || v != 1 {
		t.Fatalf("sibling fields should still decode, got %v %v", v, ok)
	}
	if handle, _ := second.TwitterHandle().Display(); handle != "7" {
		t.Fatalf("unexpected handle %q", handle)
	}
	if followers, ok := second.FollowersCount.Display(); !ok || followers != "true" {
		t.Fatalf("unexpected followers display %q %v", followers, ok)
	}
}

func TestGetTradingAgentsUndecodableBody(t *testing.T) {
	for _, body := range []string{`<html>bad gateway</html>`, `{"ok":{"data":{"agentName":"x"}}}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := newClient(srv, "k").GetTradingAgents(context.Background())
		srv.Close()
		if !xerrors.HasCode(err, xerrors.CodeUpstream) || xerrors.HasCode(err, xerrors.CodeShape) {
			t.Fatalf("body %s: expected upstream error, got %v", body, err)
		}
	}
}

func TestMetricDisplay(t *testing.T) {
	tests := map[string]struct {
		text string
		ok   bool
	}{
		`null`:            {"", false},
		`false`:           {"", false},
		`0`:               {"", false},
		`""`:              {"", false},
		`true`:            {"true", true},
		`450000`:          {"450000", true},
		`1.5`:             {"1.5", true},
		`1e21`:            {"1e+21", true},
		`0.00000015`:      {"1.5e-7", true},
		`"12k"`:           {"12k", true},
		`[]`:              {"", true},
		`[1,"a",null]`:    {"1,a,", true},
		`{"a":1}`:         {"[object Object]", true},
		`[[1,2],{"a":1}]`: {"1,2,[object Object]", true},
	}
	for raw, want := range tests {
		var m Metric
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("%s: decode: %v", raw, err)
		}
		text, ok := m.Display()
		if ok != want.ok || (ok && text != want.text) {
			t.Fatalf("%s: expected %q %v, got %q %v", raw, want.text, want.ok, text, ok)
		}
	}
	if text, ok := (Metric{}).Display(); ok || text != "" {
		t.Fatalf("absent metric should not display")
	}
	if text, ok := TextMetric("aixbt").Display(); !ok || text != "aixbt" {
		t.Fatalf("unexpected text metric display %q", text)
	}
}

func TestGetTradingAgentsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":{"data":[]}}`))
	}))
	defer srv.Close()

	resp, err := newClient(srv, "k").GetTradingAgents(context.Background())
	if err != nil {
		t.Fatalf("empty list is a valid response: %v", err)
	}
	if len(resp.OK.Data) != 0 {
		t.Fatalf("expected no agents")
	}
}

func TestGetTradingAgentsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv, "bad").GetTradingAgents(context.Background())
	if !xerrors.HasCode(err, xerrors.CodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if xerrors.MessageOf(err) != "Invalid API key" {
		t.Fatalf("unexpected message %q", xerrors.MessageOf(err))
	}
}

func TestGetTradingAgentsRequiresKey(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, err := newClient(srv, "").GetTradingAgents(context.Background())
	if !xerrors.HasCode(err, xerrors.CodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("no request should be issued without a key")
	}
}

func TestDefaultURL(t *testing.T) {
	c := NewClient(Config{APIKey: "k"})
	if c.URL() != "https://api.cookie.fun/v2/agents/agentsPaged?interval=_7Days&page=1&pageSize=5" {
		t.Fatalf("unexpected url %s", c.URL())
	}
}

func TestMetricDecoding(t *testing.T) {
	var record AgentRecord
	payload := `{"price":true,"liquidity":"12","marketCap":-3.5,"averageImpressionCount":42}`
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := record.Price.Number(); ok {
		t.Fatalf("boolean must not be numeric")
	}
	if record.Liquidity.Text() != "12" {
		t.Fatalf("string text should be kept, got %q", record.Liquidity.Text())
	}
	if v, ok := record.MarketCap.Number(); !ok || v != -3.5 {
		t.Fatalf("negative number should decode, got %v %v", v, ok)
	}
	if v, ok := record.Impressions().Number(); !ok || v != 42 {
		t.Fatalf("legacy impression key should be used as fallback, got %v %v", v, ok)
	}

	record.AverageImpressionsCount = NumberMetric(7)
	if v, _ := record.Impressions().Number(); v != 7 {
		t.Fatalf("current impression key should win, got %v", v)
	}
}
