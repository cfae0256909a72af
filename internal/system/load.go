package system

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/output"
)

//go:embed schema.cue
var schemaCUE []byte

// Format is the encoding of a system specification file.
type Format string

const (
	// FormatTOML is the composer TOML format.
	FormatTOML Format = "toml"

	// FormatCUE is a CUE file evaluating to a #System value.
	FormatCUE Format = "cue"
)

// FormatFromPath infers the specification format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported system specification %q (expected .toml or .cue)", path)
	}
}

// Loader decodes and validates system specifications.
type Loader struct {
	ctx      *cue.Context
	schema   cue.Value
	validate *validator.Validate
}

// NewLoader creates a Loader with a fresh CUE context and the embedded
// #System schema.
func NewLoader() (*Loader, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling system schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#System"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("looking up #System: %w", err)
	}

	return &Loader{
		ctx:      ctx,
		schema:   def,
		validate: validator.New(),
	}, nil
}

// LoadFile reads and validates the specification at path.
func (l *Loader) LoadFile(path string) (*Spec, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError(
				fmt.Sprintf("system specification %s does not exist", path),
				path,
				"pass the path of a .toml or .cue system specification",
			)
		}
		return nil, fmt.Errorf("reading system specification: %w", err)
	}

	spec, err := l.Parse(data, format, path)
	if err != nil {
		return nil, err
	}

	output.Debug("system specification loaded",
		"path", path,
		"format", format,
		"components", len(spec.Components),
		"virtual_resources", len(spec.VirtualResources),
	)
	return spec, nil
}

// Parse decodes a specification and checks it against the #System schema
// and the struct constraints. filename is used in error messages only.
func (l *Loader) Parse(data []byte, format Format, filename string) (*Spec, error) {
	var spec Spec

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &spec); err != nil {
			return nil, oerrors.NewValidationError(err.Error(), filename, "", "check the TOML syntax of the system specification")
		}
		// Run the decoded spec through the same schema the CUE path uses.
		v := l.ctx.Encode(spec)
		if err := l.check(v, filename); err != nil {
			return nil, err
		}
	case FormatCUE:
		v := l.ctx.CompileBytes(data, cue.Filename(filename))
		if err := v.Err(); err != nil {
			return nil, oerrors.NewValidationError(err.Error(), filename, "", "check the CUE syntax of the system specification")
		}
		if err := l.check(v, filename); err != nil {
			return nil, err
		}
		if err := l.schema.Unify(v).Decode(&spec); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("unsupported system specification format %q", format)
	}

	if err := l.validate.Struct(&spec); err != nil {
		return nil, oerrors.NewValidationError(err.Error(), filename, "", "")
	}

	return &spec, nil
}

// check unifies v with #System and requires the result to be concrete.
func (l *Loader) check(v cue.Value, filename string) error {
	unified := l.schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return oerrors.NewValidationError(err.Error(), filename, "", "the system specification does not match the #System schema")
	}
	return nil
}

// Load reads the specification at path and derives its facts.
func Load(path string) (*System, error) {
	l, err := NewLoader()
	if err != nil {
		return nil, err
	}

	spec, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return New(spec)
}
