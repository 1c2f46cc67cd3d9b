package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	a := New("test-password")

	if a == nil {
		t.Fatal("expected auth to be created")
	}
	if a.password != "test-password" {
		t.Error("expected password to be set")
	}
	if a.sessions == nil {
		t.Error("expected sessions map to be initialized")
	}
}

func TestGeneratePassword_Format(t *testing.T) {
	pw := GeneratePassword()

	parts := strings.Split(pw, "-")
	if len(parts) != 3 {
		t.Errorf("expected 3 words separated by dashes, got %d parts: %s", len(parts), pw)
	}

	for _, part := range parts {
		found := false
		for _, word := range contestWords {
			if part == word {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("word %q not in contestWords list", part)
		}
	}
}

func TestGeneratePassword_Randomness(t *testing.T) {
	passwords := make(map[string]bool)
	for i := 0; i < 10; i++ {
		passwords[GeneratePassword()] = true
	}

	if len(passwords) < 3 {
		t.Errorf("expected more password variety, got only %d unique passwords", len(passwords))
	}
}

func TestLogin_ValidPassword(t *testing.T) {
	a := New("correct-password")

	token, ok := a.Login("correct-password")

	if !ok {
		t.Error("expected login to succeed with correct password")
	}
	if token == "" {
		t.Error("expected token to be returned")
	}
	if len(token) != 64 { // 32 bytes = 64 hex chars
		t.Errorf("expected 64-char token, got %d chars", len(token))
	}
}

func TestLogin_InvalidPassword(t *testing.T) {
	a := New("correct-password")

	token, ok := a.Login("wrong-password")

	if ok {
		t.Error("expected login to fail with wrong password")
	}
	if token != "" {
		t.Error("expected no token on failed login")
	}
}

func TestValidateSession(t *testing.T) {
	a := New("pw")

	token, _ := a.Login("pw")
	if !a.ValidateSession(token) {
		t.Error("expected fresh session to be valid")
	}
	if a.ValidateSession("no-such-token") {
		t.Error("expected unknown token to be invalid")
	}
}

func TestValidateSession_Expired(t *testing.T) {
	a := New("pw")

	token, _ := a.Login("pw")
	a.mu.Lock()
	a.sessions[token] = time.Now().Add(-time.Minute)
	a.mu.Unlock()

	if a.ValidateSession(token) {
		t.Error("expected expired session to be invalid")
	}

	// Expired sessions are removed on validation
	a.mu.RLock()
	_, exists := a.sessions[token]
	a.mu.RUnlock()
	if exists {
		t.Error("expected expired session to be deleted")
	}
}

func TestLogout(t *testing.T) {
	a := New("pw")

	token, _ := a.Login("pw")
	a.Logout(token)

	if a.ValidateSession(token) {
		t.Error("expected logged-out session to be invalid")
	}
}

func TestGetSessionFromRequest(t *testing.T) {
	a := New("pw")
	token, _ := a.Login("pw")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if a.GetSessionFromRequest(r) {
		t.Error("expected request without cookie to be unauthenticated")
	}

	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	if !a.GetSessionFromRequest(r) {
		t.Error("expected request with session cookie to be authenticated")
	}
}

func TestRequireAuthAPI(t *testing.T) {
	a := New("pw")
	token, _ := a.Login("pw")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := a.RequireAuthAPI(next)

	r := httptest.NewRequest(http.MethodGet, "/api/admin/contest", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "UNAUTHORIZED") {
		t.Errorf("expected UNAUTHORIZED code in body, got %s", w.Body.String())
	}

	r = httptest.NewRequest(http.MethodGet, "/api/admin/contest", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with session, got %d", w.Code)
	}
}

func TestSessionCookies(t *testing.T) {
	w := httptest.NewRecorder()
	SetSessionCookie(w, "tok-123")

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "tok-123" {
		t.Errorf("unexpected cookie %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}

	w = httptest.NewRecorder()
	ClearSessionCookie(w)
	cookies = w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Error("expected clearing cookie with MaxAge -1")
	}
}
