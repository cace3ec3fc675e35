package project

import (
	"errors"
	"testing"

	"github.com/smartpotato/smartpotato/internal/domain"
)

func TestCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr bool
	}{
		{"valid", CreateRequest{Name: "Side Project"}, false},
		{"valid with kind", CreateRequest{Name: "P", ContextKind: KindResearch}, false},
		{"blank name", CreateRequest{Name: "   "}, true},
		{"bad kind", CreateRequest{Name: "P", ContextKind: "vibes"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestMemoryRequestValidate(t *testing.T) {
	ok := MemoryRequest{Title: "API base URL", Content: "https://api.example.com"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []MemoryRequest{
		{Title: "", Content: "x"},
		{Title: "t", Content: " "},
		{Title: "t", Content: "x", Source: "oracle"},
	}
	for i, req := range bad {
		if err := req.Validate(); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestHasChat(t *testing.T) {
	p := Project{ChatIDs: []string{"a", "b"}}
	if !p.HasChat("a") || p.HasChat("z") {
		t.Fatal("HasChat membership check failed")
	}
}
