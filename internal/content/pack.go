// Package content imports lessons and vocabulary from content packs and
// spreadsheets.
package content

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SupportedMajor is the content pack format major version this build reads.
const SupportedMajor = "v1"

// ErrUnsupportedFormat is returned for packs with a different major version.
var ErrUnsupportedFormat = errors.New("unsupported content pack format")

//go:embed pack.schema.json
var packSchema []byte

//go:embed sample.json
var samplePack []byte

const packSchemaURL = "schema://kalima-pack.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Pack is a versioned set of lessons.
type Pack struct {
	Format  string       `json:"format"`
	Lessons []PackLesson `json:"lessons"`
}

// PackLesson is one lesson of a pack.
type PackLesson struct {
	Title string     `json:"title"`
	Order int        `json:"order"`
	Words []PackWord `json:"words"`
}

// PackWord is one word of a lesson.
type PackWord struct {
	Arabic  string `json:"arabic"`
	English string `json:"english"`
	Order   int    `json:"order"`
}

// ParsePack validates raw against the pack schema and format version.
func ParsePack(raw []byte) (*Pack, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := packValidator()
	if err != nil {
		return nil, fmt.Errorf("compile pack schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var p Pack
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode pack: %w", err)
	}
	if !semver.IsValid(p.Format) || semver.Major(p.Format) != SupportedMajor {
		return nil, fmt.Errorf("%w: %q (want %s.x.y)", ErrUnsupportedFormat, p.Format, SupportedMajor)
	}
	return &p, nil
}

// Sample returns the built-in starter pack used by in-memory runs.
func Sample() (*Pack, error) {
	return ParsePack(samplePack)
}

func packValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal(packSchema, &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(packSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(packSchemaURL)
	})
	return compiled, compileErr
}
