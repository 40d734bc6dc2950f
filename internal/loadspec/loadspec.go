// Package loadspec reads schema documents and turns them into catalogs.
// Documents are written in CUE (JSON is a subset) or YAML; each document is
// unified against an embedded CUE schema before anything touches the
// builders, so shape errors surface with file positions instead of as
// builder failures halfway through construction.
package loadspec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"cuelang.org/go/encoding/yaml"
)

// Load error codes.
const (
	ErrCodeNotFound    = "L001" // document file not found
	ErrCodeParse       = "L002" // document does not parse
	ErrCodeSchema      = "L003" // document violates the schema
	ErrCodeDecode      = "L004" // document cannot be decoded
	ErrCodeUnsupported = "L005" // unsupported file extension
)

// LoadError reports a document loading failure with source position when
// CUE can supply one.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// schemaCUE is the document shape. Optional sections default to empty so a
// concrete instance always decodes.
const schemaCUE = `
#Multiplicity: {
	min: int & >=0 | *0
	max: int | *-1
}

#Attribute: {
	name:       string
	type:       string
	size:       int | *0
	distinct:   int | *0
	identifier: bool | *false
}

#Class: {
	name:       string
	count:      int | *0
	attributes: [...#Attribute] | *[]
}

#End: {
	class: string
	name:  string
	mult:  #Multiplicity
}

#Association: {
	name: string
	ends: [#End, #End]
}

#Subclass: {
	class:      string
	constraint: string | *""
}

#Generalization: {
	name:       string
	superclass: string
	subclasses: [#Subclass, ...#Subclass]
	disjoint:   bool | *false
	complete:   bool | *false
}

#Struct: {
	name:    string
	members: [string, ...string]
	anchors: [...string] | *[]
}

#Set: {
	name:    string
	structs: [string, ...string]
}

#Schema: {
	classes:         [...#Class] | *[]
	associations:    [...#Association] | *[]
	generalizations: [...#Generalization] | *[]
	structs:         [...#Struct] | *[]
	sets:            [...#Set] | *[]
}
`

// Document is the decoded schema document, section order preserved.
type Document struct {
	Classes         []ClassDoc          `json:"classes"`
	Associations    []AssociationDoc    `json:"associations"`
	Generalizations []GeneralizationDoc `json:"generalizations"`
	Structs         []StructDoc         `json:"structs"`
	Sets            []SetDoc            `json:"sets"`
}

type AttributeDoc struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Size       int    `json:"size"`
	Distinct   int64  `json:"distinct"`
	Identifier bool   `json:"identifier"`
}

type ClassDoc struct {
	Name       string         `json:"name"`
	Count      int64          `json:"count"`
	Attributes []AttributeDoc `json:"attributes"`
}

type MultiplicityDoc struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type EndDoc struct {
	Class string          `json:"class"`
	Name  string          `json:"name"`
	Mult  MultiplicityDoc `json:"mult"`
}

type AssociationDoc struct {
	Name string   `json:"name"`
	Ends []EndDoc `json:"ends"`
}

type SubclassDoc struct {
	Class      string `json:"class"`
	Constraint string `json:"constraint"`
}

type GeneralizationDoc struct {
	Name       string        `json:"name"`
	Superclass string        `json:"superclass"`
	Subclasses []SubclassDoc `json:"subclasses"`
	Disjoint   bool          `json:"disjoint"`
	Complete   bool          `json:"complete"`
}

type StructDoc struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
	Anchors []string `json:"anchors"`
}

type SetDoc struct {
	Name    string   `json:"name"`
	Structs []string `json:"structs"`
}

// Load reads and parses a document file. The extension selects the
// encoding: .cue and .json go straight to the CUE compiler, .yaml and .yml
// through the YAML extractor.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	ctx := cuecontext.New()
	var doc cue.Value
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue", ".json":
		doc = ctx.CompileBytes(data, cue.Filename(path))
	case ".yaml", ".yml":
		file, err := yaml.Extract(path, data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("parsing %s: %v", path, err)}
		}
		doc = ctx.BuildFile(file)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported document extension %q", ext)}
	}
	return Parse(ctx, doc)
}

// ParseBytes parses an in-memory CUE or JSON document.
func ParseBytes(data []byte, filename string) (*Document, error) {
	ctx := cuecontext.New()
	return Parse(ctx, ctx.CompileBytes(data, cue.Filename(filename)))
}

// Parse validates a CUE value against the document schema and decodes it.
func Parse(ctx *cue.Context, doc cue.Value) (*Document, error) {
	if err := doc.Err(); err != nil {
		return nil, cueError(ErrCodeParse, err)
	}
	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Schema"))
	if err := schema.Err(); err != nil {
		return nil, cueError(ErrCodeSchema, err)
	}
	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(ErrCodeSchema, err)
	}
	var out Document
	if err := unified.Decode(&out); err != nil {
		return nil, cueError(ErrCodeDecode, err)
	}
	return &out, nil
}

// cueError extracts the first positioned error from a CUE error chain.
// Unification failures often lead with a summary error that carries no
// position, so the whole list is scanned before falling back to the head.
func cueError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	for _, e := range errs {
		if len(cueerrors.Positions(e)) > 0 {
			first = e
			break
		}
	}
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
