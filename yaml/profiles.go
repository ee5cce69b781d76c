// Package yaml loads site profiles from YAML documents.
package yaml

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fwojciec/shopscrape"
	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var builtin []byte

// file is the structure of a profiles document.
type file struct {
	Profiles []*shopscrape.SiteProfile `yaml:"profiles"`
}

// Builtin returns the profiles shipped with the binary.
func Builtin() ([]*shopscrape.SiteProfile, error) {
	return Parse(builtin)
}

// Load reads profiles from the YAML file at path.
// Returns ENOTFOUND if the file does not exist.
func Load(path string) ([]*shopscrape.SiteProfile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, shopscrape.Errorf(shopscrape.ENOTFOUND, "profiles file %s not found", path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a profiles document. Unknown keys, invalid
// profiles and duplicate names are EINVALID.
func Parse(data []byte) ([]*shopscrape.SiteProfile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, shopscrape.Errorf(shopscrape.EINVALID, "failed to parse profiles: %v", err)
	}
	if len(f.Profiles) == 0 {
		return nil, shopscrape.Errorf(shopscrape.EINVALID, "no profiles defined")
	}

	seen := make(map[string]bool, len(f.Profiles))
	for _, p := range f.Profiles {
		if p == nil {
			return nil, shopscrape.Errorf(shopscrape.EINVALID, "empty profile entry")
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, shopscrape.Errorf(shopscrape.EINVALID, "duplicate profile %q", p.Name)
		}
		seen[p.Name] = true
	}
	return f.Profiles, nil
}
