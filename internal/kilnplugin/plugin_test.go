package kilnplugin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"kiln-plugin/internal/actions"
	"kiln-plugin/internal/config"
	xerrors "kiln-plugin/internal/errors"
	"kiln-plugin/internal/kiln"
	"kiln-plugin/pkg/logger"
	"kiln-plugin/pkg/plugin"
)

var testRuntime = plugin.RuntimeFunc(func(key string) (string, bool) {
	switch key {
	case config.KilnAPIKey:
		return "kiln-key", true
	case config.CookieAPIKey:
		return "cookie-key", true
	}
	return "", false
})

func newManager(t *testing.T, opts Options) *plugin.Manager {
	t.Helper()
	manager := plugin.NewManager(plugin.WithLogger(logger.Discard()))
	if err := manager.Register(New(opts)); err != nil {
		t.Fatalf("register: %v", err)
	}
	return manager
}

func TestInfo(t *testing.T) {
	info := New(Options{Logger: logger.Discard()}).Info()
	if info.ID != "kiln" || info.Description != "Kiln plugin for Eliza" {
		t.Fatalf("unexpected info %+v", info)
	}
	raw, err := json.Marshal(info.Settings)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	if !strings.Contains(string(raw), "KILN_API_KEY") || !strings.Contains(string(raw), "COOKIE_API_KEY") {
		t.Fatalf("schema should describe both keys: %s", raw)
	}
}

func TestStakingScenarioPartialFailure(t *testing.T) {
	failing := map[string]bool{"tia": true, "near": true}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing[kiln.ExtractChain(r.URL.Path)] {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"nb_validators":100,"network_gross_apy":4.567}}`))
	}))
	defer srv.Close()

	manager := newManager(t, Options{KilnBaseURL: srv.URL, HTTPClient: srv.Client(), Logger: logger.Discard()})
	var delivered []plugin.Content
	outcome, err := manager.Invoke(context.Background(), "apy", testRuntime, plugin.Message{Text: "APY?"},
		func(c plugin.Content) error {
			delivered = append(delivered, c)
			return nil
		})
	if err != nil || !outcome.OK {
		t.Fatalf("unexpected outcome %+v err %v", outcome, err)
	}
	if outcome.Action != actions.StakingStatisticsName || outcome.ID == "" {
		t.Fatalf("outcome should carry action and invocation id: %+v", outcome)
	}
	if len(delivered) != 1 {
		t.Fatalf("expected one delivery, got %d", len(delivered))
	}
	text := delivered[0].Text
	if strings.Count(text, " - 100 validators.\r\n - 4.57% of gross APY") != 15 {
		t.Fatalf("expected 15 chain blocks, got:\n%s", text)
	}
	if strings.Contains(text, "TIA :") || strings.Contains(text, "NEAR :") {
		t.Fatalf("failed chains must be dropped")
	}
	if strings.Index(text, "ETH :") > strings.Index(text, "ZETA :") {
		t.Fatalf("blocks should follow endpoint order")
	}
}

func TestTrendingScenarioMissingData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":{"totalCount":0}}`))
	}))
	defer srv.Close()

	manager := newManager(t, Options{CookieBaseURL: srv.URL, HTTPClient: srv.Client(), Logger: logger.Discard()})
	calls := 0
	outcome, err := manager.Invoke(context.Background(), actions.TrendingAgentsName, testRuntime, plugin.Message{},
		func(plugin.Content) error {
			calls++
			return nil
		})
	if err != nil {
		t.Fatalf("shape errors must not abort the invocation: %v", err)
	}
	if outcome.OK || outcome.Delivered || calls != 0 {
		t.Fatalf("expected falsy completion without callback, got %+v (calls=%d)", outcome, calls)
	}
	if !xerrors.HasCode(outcome.Err, xerrors.CodeShape) {
		t.Fatalf("outcome should expose the shape error, got %v", outcome.Err)
	}
}

func TestVaultScenarioOffline(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	srv.Close()

	manager := newManager(t, Options{KilnBaseURL: srv.URL, CookieBaseURL: srv.URL, Logger: logger.Discard()})
	var text string
	outcome, err := manager.Invoke(context.Background(), "erc-4626", testRuntime, plugin.Message{},
		func(c plugin.Content) error {
			text = c.Text
			return nil
		})
	if err != nil || !outcome.OK {
		t.Fatalf("vault listing should succeed offline: %+v %v", outcome, err)
	}
	if strings.Count(text, "- ") != 5 || !strings.HasPrefix(text, "Here is a list of Kiln's Vaults :\r\n ") {
		t.Fatalf("unexpected listing %q", text)
	}
	if hits.Load() != 0 {
		t.Fatalf("vault listing must not issue requests")
	}
}

func TestMissingCredentialIsFatal(t *testing.T) {
	manager := newManager(t, Options{Logger: logger.Discard()})
	empty := plugin.RuntimeFunc(func(string) (string, bool) { return "", false })
	for _, name := range []string{actions.StakingStatisticsName, actions.VaultsName, actions.TrendingAgentsName} {
		_, err := manager.Invoke(context.Background(), name, empty, plugin.Message{}, nil)
		if !plugin.IsFatal(err) {
			t.Fatalf("%s: expected fatal configuration error, got %v", name, err)
		}
	}
}
