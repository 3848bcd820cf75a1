package generator

import (
	"strings"
	"testing"
)

func TestBuildPromptCategoryRules(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{ref: "adobestock", want: "exactly ONE category id"},
		{ref: "shutterstock", want: "exactly TWO category ids"},
		{ref: "freepik", want: "platform's own category guidelines"},
		{ref: "123rf", want: "platform's own category guidelines"},
		{ref: "pond5", want: "appropriate category classification"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			prompt := BuildPrompt(mustProfile(t, tt.ref), 25, 60)
			if !strings.Contains(prompt, tt.want) {
				t.Fatalf("expected prompt to contain %q:\n%s", tt.want, prompt)
			}
		})
	}
}

func TestBuildPromptParameters(t *testing.T) {
	p := mustProfile(t, "1")
	prompt := BuildPrompt(p, 40, 55)

	for _, want := range []string{
		"Exactly 55 characters long",
		"Exactly 40 unique single-word keywords",
		"REQUIRED FIELDS:\nTitle, Keywords, Category",
		`{"id":8,"name":"Graphic Resources"}`,
		"AdobeStock",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}

func TestBuildPromptDefaults(t *testing.T) {
	prompt := BuildPrompt(mustProfile(t, "vecteezy"), 0, -1)
	if !strings.Contains(prompt, "Exactly 70 characters long") {
		t.Error("expected default title length")
	}
	if !strings.Contains(prompt, "Exactly 30 unique") {
		t.Error("expected default keyword count")
	}
}
