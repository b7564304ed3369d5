package portfolio

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// requiredKeys are the top-level keys every document must carry. marquee is optional.
//
//nolint:gochecknoglobals // Document contract
var requiredKeys = []string{
	"profile",
	"navigation",
	"badges",
	"highlights",
	"about",
	"skills",
	"contact",
	"experiences",
	"projects",
	"socials",
	"footer",
}

// MalformedError reports a document that does not match the expected shape.
type MalformedError struct {
	Field  string
	Reason string
}

func (e *MalformedError) Error() (msg string) {
	msg = fmt.Sprintf("malformed portfolio document: %s: %s", e.Field, e.Reason)
	return msg
}

func malformed(field, reason string) (err error) {
	err = &MalformedError{Field: field, Reason: reason}
	return err
}

// Load fetches, parses and validates the document at source.
func Load(ctx context.Context, source string) (doc Document, err error) {
	var data []byte
	data, err = FetchWithContext(ctx, source)
	if err != nil {
		return doc, err
	}

	doc, err = Parse(data)
	if err != nil {
		err = errors.Wrapf(err, "failed to load portfolio document: %s", source)
		return doc, err
	}

	return doc, err
}

// Parse decodes and validates a JSON document.
func Parse(data []byte) (doc Document, err error) {
	var keys map[string]json.RawMessage
	err = json.Unmarshal(data, &keys)
	if err != nil {
		err = errors.Wrap(err, "failed to parse portfolio JSON")
		return doc, err
	}

	for _, key := range requiredKeys {
		raw, ok := keys[key]
		if !ok || string(raw) == "null" {
			err = malformed(key, "missing")
			return doc, err
		}
	}

	err = json.Unmarshal(data, &doc)
	if err != nil {
		err = errors.Wrap(err, "failed to decode portfolio JSON")
		return doc, err
	}

	err = doc.Validate()
	return doc, err
}

// Validate checks that the document is well-formed.
func (d *Document) Validate() (err error) {
	if d.Profile.Name == "" {
		err = malformed("profile.name", "required")
		return err
	}

	if d.Profile.Title == "" {
		err = malformed("profile.title", "required")
		return err
	}

	seen := make(map[string]bool, len(d.Navigation))
	for i, item := range d.Navigation {
		if item.ID == "" {
			err = malformed(fmt.Sprintf("navigation[%d].id", i), "required")
			return err
		}
		if seen[item.ID] {
			err = malformed(fmt.Sprintf("navigation[%d].id", i), "duplicate id "+item.ID)
			return err
		}
		seen[item.ID] = true
	}

	for i, exp := range d.Experiences {
		if exp.Company == "" {
			err = malformed(fmt.Sprintf("experiences[%d].company", i), "required")
			return err
		}
		if exp.Role == "" {
			err = malformed(fmt.Sprintf("experiences[%d].role", i), "required")
			return err
		}
	}

	for i, project := range d.Projects {
		err = project.validate(i)
		if err != nil {
			return err
		}
	}

	for i, social := range d.Socials {
		if social.URL == "" {
			err = malformed(fmt.Sprintf("socials[%d].url", i), "required")
			return err
		}
	}

	return err
}

func (p Project) validate(index int) (err error) {
	if p.Title == "" {
		err = malformed(fmt.Sprintf("projects[%d].title", index), "required")
		return err
	}

	if len(p.Images) == 0 {
		err = malformed(fmt.Sprintf("projects[%d].images", index), "at least one image is required")
		return err
	}

	for j, img := range p.Images {
		if img == "" {
			err = malformed(fmt.Sprintf("projects[%d].images[%d]", index, j), "empty image reference")
			return err
		}
	}

	switch p.Orientation {
	case "", OrientationDefault, OrientationPortrait:
	default:
		err = malformed(fmt.Sprintf("projects[%d].orientation", index), fmt.Sprintf("unknown orientation %q", p.Orientation))
		return err
	}

	return err
}
