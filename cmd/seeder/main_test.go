package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestJitterLocation(t *testing.T) {
	base := Location{Lat: 51.5074, Lon: -0.1278}
	loc := jitterLocation(base, 500)

	// 500m is well under 0.01 degrees at this latitude.
	if math.Abs(loc.Lat-base.Lat) > 0.01 {
		t.Errorf("Latitude jittered too far: %f", loc.Lat)
	}
	if math.Abs(loc.Lon-base.Lon) > 0.01 {
		t.Errorf("Longitude jittered too far: %f", loc.Lon)
	}
}

func TestRegisterAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/api/auth/register" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		if body["role"] != "owner" {
			t.Errorf("Expected role owner, got %s", body["role"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"token": "test-token"})
	}))
	defer server.Close()

	os.Setenv("PARKAROO_URL", server.URL)
	defer os.Unsetenv("PARKAROO_URL")

	token, err := registerAccount("demo-owner", "owner")
	if err != nil {
		t.Fatalf("registerAccount failed: %v", err)
	}
	if token != "test-token" {
		t.Errorf("Expected test-token, got %s", token)
	}
}

func TestRegisterAccount_FallsBackToLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/auth/register" {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "Username already exists"})
			return
		}
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"token": "login-token"})
	}))
	defer server.Close()

	os.Setenv("PARKAROO_URL", server.URL)
	defer os.Unsetenv("PARKAROO_URL")

	token, err := registerAccount("demo-owner", "owner")
	if err != nil {
		t.Fatalf("registerAccount failed: %v", err)
	}
	if token != "login-token" {
		t.Errorf("Expected login-token, got %s", token)
	}
}
