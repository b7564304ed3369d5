package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func loadFixture(t *testing.T) (data []byte) {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "portfolio.json"))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	return data
}

func TestParse(t *testing.T) {
	doc, err := Parse(loadFixture(t))
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}

	if doc.Profile.Name != "Jane Doe" {
		t.Errorf("Expected profile name 'Jane Doe', got '%s'", doc.Profile.Name)
	}

	if len(doc.Projects) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(doc.Projects))
	}

	if !doc.Projects[0].HasSlider() {
		t.Error("Expected first project to need a slider")
	}

	if doc.Projects[1].HasSlider() {
		t.Error("Expected single-image project to have no slider")
	}

	if !doc.Projects[1].IsPortrait() {
		t.Error("Expected second project to be portrait")
	}

	if len(doc.Marquee) != 2 {
		t.Errorf("Expected 2 marquee items, got %d", len(doc.Marquee))
	}
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte("not valid json"))
	if err == nil {
		t.Error("Expected error parsing invalid JSON, got nil")
	}
}

func TestParseMissingKey(t *testing.T) {
	var raw map[string]json.RawMessage
	err := json.Unmarshal(loadFixture(t), &raw)
	if err != nil {
		t.Fatalf("Failed to unmarshal fixture: %v", err)
	}

	delete(raw, "footer")
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}

	_, err = Parse(data)
	if err == nil {
		t.Fatal("Expected error for missing footer, got nil")
	}

	var malformedErr *MalformedError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("Expected MalformedError, got %T: %v", err, err)
	}

	if malformedErr.Field != "footer" {
		t.Errorf("Expected field 'footer', got '%s'", malformedErr.Field)
	}
}

func TestParseMarqueeOptional(t *testing.T) {
	var raw map[string]json.RawMessage
	err := json.Unmarshal(loadFixture(t), &raw)
	if err != nil {
		t.Fatalf("Failed to unmarshal fixture: %v", err)
	}

	delete(raw, "marquee")
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Expected marquee to be optional, got %v", err)
	}

	if len(doc.Marquee) != 0 {
		t.Errorf("Expected no marquee items, got %d", len(doc.Marquee))
	}
}

func TestValidate(t *testing.T) {
	valid := func() (doc Document) {
		doc = Document{
			Profile:    Profile{Name: "Jane", Title: "Engineer"},
			Navigation: []NavItem{{ID: "about", Label: "About"}},
			Projects: []Project{
				{Title: "One", Images: []string{"a.png"}},
			},
		}
		return doc
	}

	tests := []struct {
		name      string
		mutate    func(d *Document)
		wantField string
	}{
		{
			name:   "valid document",
			mutate: func(d *Document) {},
		},
		{
			name:      "missing name",
			mutate:    func(d *Document) { d.Profile.Name = "" },
			wantField: "profile.name",
		},
		{
			name:      "missing title",
			mutate:    func(d *Document) { d.Profile.Title = "" },
			wantField: "profile.title",
		},
		{
			name:      "duplicate navigation id",
			mutate:    func(d *Document) { d.Navigation = append(d.Navigation, NavItem{ID: "about"}) },
			wantField: "navigation[1].id",
		},
		{
			name:      "project without images",
			mutate:    func(d *Document) { d.Projects[0].Images = nil },
			wantField: "projects[0].images",
		},
		{
			name:      "unknown orientation",
			mutate:    func(d *Document) { d.Projects[0].Orientation = "sideways" },
			wantField: "projects[0].orientation",
		},
		{
			name:   "portrait orientation",
			mutate: func(d *Document) { d.Projects[0].Orientation = OrientationPortrait },
		},
		{
			name:      "experience missing company",
			mutate:    func(d *Document) { d.Experiences = []Experience{{Role: "SRE"}} },
			wantField: "experiences[0].company",
		},
		{
			name:      "social missing url",
			mutate:    func(d *Document) { d.Socials = []Social{{Label: "GitHub"}} },
			wantField: "socials[0].url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			tt.mutate(&doc)
			err := doc.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}

			var malformedErr *MalformedError
			if !errors.As(err, &malformedErr) {
				t.Fatalf("Expected MalformedError, got %v", err)
			}
			if malformedErr.Field != tt.wantField {
				t.Errorf("Expected field '%s', got '%s'", tt.wantField, malformedErr.Field)
			}
		})
	}
}

func TestSectionNumber(t *testing.T) {
	doc := Document{
		Navigation: []NavItem{{ID: "about"}, {ID: "projects"}},
	}

	if n := doc.SectionNumber("about"); n != 1 {
		t.Errorf("Expected about to be 1, got %d", n)
	}

	if n := doc.SectionNumber("projects"); n != 2 {
		t.Errorf("Expected projects to be 2, got %d", n)
	}

	if n := doc.SectionNumber("contact"); n != 0 {
		t.Errorf("Expected absent section to be 0, got %d", n)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "data.json")

	err := os.WriteFile(path, loadFixture(t), 0600)
	if err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}

	if doc.Footer.Credit != "Built with Go" {
		t.Errorf("Expected footer credit 'Built with Go', got '%s'", doc.Footer.Credit)
	}
}

func TestLoadMalformedKeepsSource(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "data.json")

	err := os.WriteFile(path, []byte(`{"profile": {}}`), 0600)
	if err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	_, err = Load(context.Background(), path)
	if err == nil {
		t.Fatal("Expected error loading malformed document, got nil")
	}

	if !strings.Contains(err.Error(), path) {
		t.Errorf("Expected error to mention source path, got %v", err)
	}

	var malformedErr *MalformedError
	if !errors.As(err, &malformedErr) {
		t.Errorf("Expected wrapped MalformedError, got %v", err)
	}
}
