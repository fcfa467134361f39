package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatstack_backend/pkg/config"

	"github.com/gofiber/fiber/v2"
)

func TestGoogleLoginSetsStateCookie(t *testing.T) {
	Init(&config.Config{
		Google: config.GoogleConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:5000/auth/google/callback",
		},
	}, nil, nil, nil, nil)

	app := fiber.New()
	app.Get("/auth/google", GoogleLogin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusTemporaryRedirect)
	}

	var state string
	for _, ck := range resp.Cookies() {
		if ck.Name == oauthStateCookie {
			state = ck.Value
		}
	}
	if state == "" {
		t.Fatal("state cookie not set")
	}

	location := resp.Header.Get("Location")
	if !strings.Contains(location, "state="+state) {
		t.Errorf("redirect %q does not carry the state cookie value", location)
	}
}

// The callback must reject any request whose state does not match the cookie
// from the login redirect.
func TestGoogleCallbackRejectsBadState(t *testing.T) {
	app := fiber.New()
	app.Get("/auth/google/callback", GoogleCallback)

	cases := []struct {
		name   string
		query  string
		cookie string
	}{
		{"missing state", "?code=abc", "nonce"},
		{"mismatched state", "?code=abc&state=other", "nonce"},
		{"missing cookie", "?code=abc&state=nonce", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback"+tc.query, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: tc.cookie})
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
			}
		})
	}
}
