package inference_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/healthmate/server/internal/healthmate/inference"
	"github.com/stretchr/testify/require"
)

func TestClientDiagnose(t *testing.T) {
	var gotAuth, gotSymptoms string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Symptoms string `json:"symptoms"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		gotSymptoms = body.Symptoms

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"diagnosis":"  common cold  "}`))
	}))
	t.Cleanup(srv.Close)

	c := inference.NewClient(srv.URL, "key-123", time.Second)
	diagnosis, err := c.Diagnose(t.Context(), "runny nose")
	require.NoError(t, err)
	require.Equal(t, "common cold", diagnosis)
	require.Equal(t, "Bearer key-123", gotAuth)
	require.Equal(t, "runny nose", gotSymptoms)
}

func TestClientDiagnoseFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"upstream 500", http.StatusInternalServerError, `{"error":"boom"}`, inference.ErrUpstream},
		{"malformed body", http.StatusOK, `not json`, inference.ErrUpstream},
		{"empty diagnosis", http.StatusOK, `{"diagnosis":"   "}`, inference.ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			_, err := inference.NewClient(srv.URL, "", time.Second).Diagnose(t.Context(), "cough")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("not configured", func(t *testing.T) {
		_, err := inference.NewClient("", "", 0).Diagnose(t.Context(), "cough")
		require.ErrorIs(t, err, inference.ErrUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		t.Cleanup(srv.Close)

		_, err := inference.NewClient(srv.URL, "", 20*time.Millisecond).Diagnose(t.Context(), "cough")
		require.Error(t, err)
	})
}
