package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// ─── Input Parsing Tests ───

func TestParseUnitsValue(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    int
		wantErr bool
	}{
		{"json number", float64(17), 17, false},
		{"zero", float64(0), 0, false},
		{"numeric string", "12", 12, false},
		{"negative number", float64(-1), 0, true},
		{"negative string", "-3", 0, true},
		{"non-numeric string", "twelve", 0, true},
		{"fractional number", 2.5, 0, true},
		{"boolean", true, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseUnitsValue(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %v", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		got, err := parseTimestamp("2026-03-12T09:30:00Z")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("zone-less falls back to local", func(t *testing.T) {
		got, err := parseTimestamp("2026-03-12T09:30")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got.Hour() != 9 || got.Minute() != 30 {
			t.Errorf("Expected 09:30 local, got %v", got)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := parseTimestamp("not-a-date"); err == nil {
			t.Error("Expected error for non-date input")
		}
	})
}

// ─── Resource Handler Tests ───

func TestCreateResource_RequestShape(t *testing.T) {
	body := map[string]interface{}{
		"title":      "Clean Code",
		"type":       "BOOK",
		"totalUnits": 17,
	}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/resources", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	var parsed struct {
		Title      string      `json:"title"`
		Type       string      `json:"type"`
		TotalUnits interface{} `json:"totalUnits"`
	}
	if err := json.NewDecoder(req.Body).Decode(&parsed); err != nil {
		t.Fatalf("Failed to parse request body: %v", err)
	}

	if parsed.Title != "Clean Code" {
		t.Errorf("Expected title 'Clean Code', got %q", parsed.Title)
	}
	if parsed.Type != "BOOK" {
		t.Errorf("Expected type 'BOOK', got %q", parsed.Type)
	}
	if units, err := parseUnitsValue(parsed.TotalUnits); err != nil || units != 17 {
		t.Errorf("Expected totalUnits 17, got %v (err: %v)", units, err)
	}
}

// ─── JSON Response Tests ───

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"message": "ok"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", rr.Header().Get("Content-Type"))
	}

	var result map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["message"] != "ok" {
		t.Errorf("Expected message 'ok', got %v", result["message"])
	}
}

func TestErrorResp_CarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.Header.Set("X-Request-ID", "req-123")

	resp := errorResp("NOT_FOUND", "Session not found", req)

	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected code NOT_FOUND, got %q", resp.Error.Code)
	}
	if resp.Error.RequestID != "req-123" {
		t.Errorf("Expected request ID 'req-123', got %q", resp.Error.RequestID)
	}
}

func TestErrorRespWithFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)

	resp := errorRespWithFields("VALIDATION_ERROR", "Validation failed",
		map[string]string{"endTime": "must be after startTime"}, req)

	if resp.Error.Fields["endTime"] != "must be after startTime" {
		t.Errorf("Expected field error to carry through, got %v", resp.Error.Fields)
	}
}
