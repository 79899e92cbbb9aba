package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestPromptPick(t *testing.T) {
	values := []string{"Soil and Crop Sciences", "Computer Science", "Animal Sciences"}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"picks by number", "2\n", "Computer Science", false},
		{"first value", "1\n", "Soil and Crop Sciences", false},
		{"last value", "3\n", "Animal Sciences", false},
		{"enter skips", "\n", "", false},
		{"whitespace skips", "   \n", "", false},
		{"eof skips", "", "", false},
		{"zero is out of range", "0\n", "", true},
		{"beyond range", "4\n", "", true},
		{"not a number", "soil\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := promptPick(bufio.NewReader(strings.NewReader(tt.input)), &out, "department", values)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got value %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("promptPick() = %q, want %q", got, tt.want)
			}

			prompt := out.String()
			if !strings.Contains(prompt, "department") {
				t.Errorf("prompt missing label: %q", prompt)
			}
			if !strings.Contains(prompt, "1. Soil and Crop Sciences") {
				t.Errorf("prompt missing numbered values: %q", prompt)
			}
		})
	}
}

func TestPromptPickNoValues(t *testing.T) {
	var out bytes.Buffer
	got, err := promptPick(bufio.NewReader(strings.NewReader("1\n")), &out, "department", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty pick, got %q", got)
	}
	if out.Len() != 0 {
		t.Errorf("expected no prompt output, got %q", out.String())
	}
}
