package interceptors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := ClientIP(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "192.0.2.9:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry")
	}
	if entry.Level != logrus.InfoLevel {
		t.Errorf("level = %v", entry.Level)
	}
	if entry.Data["status"] != http.StatusTeapot || entry.Data["path"] != "/auth/login" || entry.Data["client_ip"] != "192.0.2.9" {
		t.Errorf("fields = %v", entry.Data)
	}
}

func TestRequestLogger_ServerErrorWarns(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.WarnLevel {
		t.Errorf("entry = %v, want warn", hook.LastEntry())
	}
}
