package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "simple content", content: "amul butter dairy"},
		{name: "empty string", content: ""},
		{name: "long content", content: "a much longer canonical text that should still hash consistently across runs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("amul butter")
	id2 := IDFromContent("mother dairy butter")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestCanonicalText(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    string
	}{
		{
			name:    "all fields",
			product: Product{Name: "Amul Butter", Brand: "Amul", Category: "Dairy"},
			want:    "amul amul butter dairy",
		},
		{
			name:    "whitespace collapsed",
			product: Product{Name: "  Amul   Butter ", Brand: "Amul", Category: "Dairy"},
			want:    "amul amul butter dairy",
		},
		{
			name:    "empty fields contribute nothing",
			product: Product{Name: "Butter"},
			want:    "butter",
		},
		{
			name:    "fully empty record",
			product: Product{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalText(tt.product)
			if got != tt.want {
				t.Errorf("CanonicalText() = %q, want %q", got, tt.want)
			}
			// Pure function: repeated calls agree.
			if again := CanonicalText(tt.product); again != got {
				t.Errorf("CanonicalText() not stable: %q then %q", got, again)
			}
		})
	}
}

func TestPhoneticCode_String(t *testing.T) {
	code := PhoneticCode{
		Primary:   []string{"AML", "PTR"},
		Alternate: []string{"", "PDR"},
	}
	if got, want := code.String(), "AML PTR/PDR"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPhoneticCode_IsEmpty(t *testing.T) {
	if !(PhoneticCode{}).IsEmpty() {
		t.Error("zero code should be empty")
	}
	if (PhoneticCode{Primary: []string{"AML"}, Alternate: []string{""}}).IsEmpty() {
		t.Error("code with tokens should not be empty")
	}
}
