package llm

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"json tag", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading prose", "Here is the result:\n```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"unclosed fence", "```json\n{\"a\": 1}", "```json\n{\"a\": 1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Fatalf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeLooseMalformedDegradesToEmpty(t *testing.T) {
	got := DecodeLoose("this is not json")
	if got == nil {
		t.Fatal("expected empty map, got nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestDecodeLooseToleratesProseAndFences(t *testing.T) {
	got := DecodeLoose("Sure! Here you go:\n```json\n{\"confidence\": 0.9}\n```")
	if got["confidence"] != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", got["confidence"])
	}
}

func TestDecodeInto(t *testing.T) {
	var target struct {
		Confidence float64 `json:"confidence"`
	}
	DecodeInto(`{"confidence": 0.8}`, &target)
	if target.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want 0.8", target.Confidence)
	}

	// Malformed payloads leave the target zero-valued.
	var zero struct {
		Confidence float64 `json:"confidence"`
	}
	DecodeInto("garbage", &zero)
	if zero.Confidence != 0 {
		t.Fatalf("confidence = %v, want zero value", zero.Confidence)
	}
}
