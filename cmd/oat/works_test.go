package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestIntersectIDs(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		allow []string
		want  []string
	}{
		{
			name:  "keeps order of ids",
			ids:   []string{"A3", "A1", "A2"},
			allow: []string{"A1", "A2", "A3"},
			want:  []string{"A3", "A1", "A2"},
		},
		{
			name:  "drops ids outside allow",
			ids:   []string{"A1", "A9", "A2"},
			allow: []string{"A1", "A2"},
			want:  []string{"A1", "A2"},
		},
		{
			name:  "empty intersection",
			ids:   []string{"A9"},
			allow: []string{"A1"},
			want:  []string{},
		},
		{
			name:  "empty allow",
			ids:   []string{"A1"},
			allow: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intersectIDs(tt.ids, tt.allow)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("intersectIDs(%v, %v) = %v, want %v", tt.ids, tt.allow, got, tt.want)
			}
		})
	}
}

func TestGatherAuthorInputs(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "report.csv")
	csv := "Last Name,First Initial,Department,Job Title,Unit Name\n" +
		"Kelly,E,Soil and Crop Sciences,Professor,College of Agricultural Sciences\n" +
		"Smith,J,Computer Science,Associate Professor,Walter Scott College of Engineering\n"
	if err := os.WriteFile(rosterPath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	restore := func() {
		worksAuthors = nil
		worksAuthorsFile = ""
		worksDepartment = ""
		worksJobTitle = ""
		worksDept = ""
		worksCollege = ""
	}
	defer restore()

	t.Run("flags only", func(t *testing.T) {
		restore()
		worksAuthors = []string{"Jane Smith", "A5023888391"}
		worksDept = "Biology"

		got, err := gatherAuthorInputs()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []authorInput{
			{Name: "Jane Smith", Department: "Biology"},
			{Name: "A5023888391", Department: "Biology"},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("roster file carries its own context", func(t *testing.T) {
		restore()
		worksAuthorsFile = rosterPath

		got, err := gatherAuthorInputs()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 inputs, got %d: %+v", len(got), got)
		}
		if got[0].Name != "E. Kelly" || got[0].Department != "Soil and Crop Sciences" {
			t.Errorf("unexpected first input: %+v", got[0])
		}
		if got[0].College != "College of Agricultural Sciences" {
			t.Errorf("expected college from roster, got %q", got[0].College)
		}
	})

	t.Run("roster filter applies", func(t *testing.T) {
		restore()
		worksAuthorsFile = rosterPath
		worksDepartment = "computer"

		got, err := gatherAuthorInputs()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Name != "J. Smith" {
			t.Errorf("expected only J. Smith, got %+v", got)
		}
	})

	t.Run("flag context fills roster gaps", func(t *testing.T) {
		restore()
		worksAuthorsFile = rosterPath
		worksAuthors = []string{"Extra Author"}
		worksCollege = "Fallback College"

		got, err := gatherAuthorInputs()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		last := got[len(got)-1]
		if last.Name != "Extra Author" || last.College != "Fallback College" {
			t.Errorf("unexpected flag input: %+v", last)
		}
		// Roster rows keep their own college over the flag value.
		if got[0].College != "College of Agricultural Sciences" {
			t.Errorf("roster college overridden: %+v", got[0])
		}
	})

	t.Run("missing file", func(t *testing.T) {
		restore()
		worksAuthorsFile = filepath.Join(dir, "nope.csv")

		if _, err := gatherAuthorInputs(); err == nil {
			t.Error("expected error for missing roster file")
		}
	})
}
