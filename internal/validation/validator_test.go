package validation

import (
	"errors"
	"strings"
	"testing"

	"center-directory-service/internal/models"
)

func intPtr(v int) *int { return &v }

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantField string
	}{
		{"valid reaction", models.SetReactionRequest{Reaction: "like"}, ""},
		{"missing reaction", models.SetReactionRequest{}, "reaction"},
		{"unknown reaction", models.SetReactionRequest{Reaction: "love"}, "reaction"},
		{"valid filter click", models.FilterClickRequest{TagID: 3}, ""},
		{"zero tag id", models.FilterClickRequest{}, "tag_id"},
		{"empty page signals", models.PageSignals{}, ""},
		{"scroll depth in range", models.PageSignals{ScrollDepth: intPtr(100)}, ""},
		{"scroll depth too deep", models.PageSignals{ScrollDepth: intPtr(101)}, "scroll_depth"},
		{"negative clicks", models.PageSignals{MapClicks: intPtr(-1)}, "map_clicks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if verr.Fields[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Fields[0].Field, tt.wantField)
			}
			if !strings.Contains(verr.Error(), tt.wantField) {
				t.Errorf("message %q should name the field", verr.Error())
			}
		})
	}
}

func TestGetReturnsSingleton(t *testing.T) {
	if Get() != Get() {
		t.Error("Get() should return the same instance")
	}
}
