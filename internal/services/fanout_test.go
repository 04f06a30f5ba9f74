package services

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeNotice(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantID  string
		wantErr string
	}{
		{"created", `{"type":"created","id":"c-1"}`, "c-1", ""},
		{"updated", `{"type":"updated","id":"c-2"}`, "c-2", ""},
		{"not json", `created c-1`, "", "invalid character"},
		{"missing id", `{"type":"created"}`, "", "without candidate id"},
		{"unknown type", `{"type":"deleted","id":"c-1"}`, "", "unknown change type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := decodeNotice(tt.payload)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("decodeNotice() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeNotice() error = %v", err)
			}
			if n.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", n.ID, tt.wantID)
			}
		})
	}
}

func TestChangeNoticeStaysSmall(t *testing.T) {
	raw, err := json.Marshal(changeNotice{Type: ChangeUpdated, ID: "0f8fad5b-d9cb-469f-a165-70867728950e"})
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) > 128 {
		t.Errorf("notice is %d bytes: %s", len(raw), raw)
	}
}
