// Package seed loads the fixtures every store backend starts from.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/rbac"
	"github.com/odyssey-erp/admindash/internal/roles"
	"github.com/odyssey-erp/admindash/internal/users"
)

//go:embed default.yaml
var defaultYAML []byte

// Data is the initial content of the three collections.
type Data struct {
	Users       []users.User      `yaml:"users"`
	Roles       []roles.Role      `yaml:"roles"`
	Permissions []rbac.Permission `yaml:"permissions"`
}

// Default returns the built-in fixtures.
func Default() Data {
	data, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("seed: embedded fixtures: %v", err))
	}
	return data
}

// Load reads fixtures from path, or returns Default when path is empty.
func Load(path string) (Data, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML fixtures. Unknown keys are rejected, every record must
// validate and ids must be positive and unique per collection.
func Parse(raw []byte) (Data, error) {
	var data Data
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return Data{}, fmt.Errorf("seed: decode: %w", err)
	}
	for i, r := range data.Roles {
		data.Roles[i].Permissions = roles.NewPermissionSet(r.Permissions...)
	}
	if err := check(users.Descriptor(), data.Users); err != nil {
		return Data{}, err
	}
	if err := check(roles.Descriptor(), data.Roles); err != nil {
		return Data{}, err
	}
	if err := check(rbac.PermissionDescriptor(), data.Permissions); err != nil {
		return Data{}, err
	}
	return data, nil
}

func check[T any, P any](desc entity.Descriptor[T, P], items []T) error {
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		id := desc.ID(item)
		if id <= 0 {
			return fmt.Errorf("seed: %s: id %d must be positive", desc.Kind, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("seed: %s: duplicate id %d", desc.Kind, id)
		}
		seen[id] = struct{}{}
		if err := desc.Validate(item); err != nil {
			return fmt.Errorf("seed: %s %d: %w", desc.Kind, id, err)
		}
	}
	return nil
}
