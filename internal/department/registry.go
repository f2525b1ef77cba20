package department

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/ticket-router/internal/domain"
)

var storeIdentPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

type registryFile struct {
	Version     int              `yaml:"version"`
	Departments []departmentFile `yaml:"departments"`
}

type departmentFile struct {
	Name  string `yaml:"name"`
	Store string `yaml:"store"`
}

// Registry is the ordered, read-only mapping of department name to physical store.
type Registry struct {
	ordered []domain.Department
	byName  map[string]domain.Department
}

// NewRegistry validates and freezes the given departments. Order is preserved and
// defines iteration order everywhere else.
func NewRegistry(departments []domain.Department) (*Registry, error) {
	r := &Registry{
		ordered: make([]domain.Department, 0, len(departments)),
		byName:  make(map[string]domain.Department, len(departments)),
	}
	stores := make(map[string]struct{}, len(departments))
	for _, d := range departments {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return nil, errors.New("department: empty name")
		}
		if !storeIdentPattern.MatchString(d.Store) {
			return nil, fmt.Errorf("department %q: invalid store identifier %q", d.Name, d.Store)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("department %q: duplicate name", d.Name)
		}
		if _, dup := stores[d.Store]; dup {
			return nil, fmt.Errorf("department %q: store %q already mapped", d.Name, d.Store)
		}
		stores[d.Store] = struct{}{}
		r.byName[d.Name] = d
		r.ordered = append(r.ordered, d)
	}
	return r, nil
}

// LoadFile reads a registry from a YAML file.
func LoadFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read departments: %w", err)
	}
	return Parse(b)
}

// Parse decodes a version 1 registry document.
func Parse(b []byte) (*Registry, error) {
	var rf registryFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, fmt.Errorf("parse departments: %w", err)
	}
	if rf.Version != 1 {
		return nil, errors.New("departments: unsupported version")
	}
	departments := make([]domain.Department, 0, len(rf.Departments))
	for _, d := range rf.Departments {
		departments = append(departments, domain.Department{Name: d.Name, Store: d.Store})
	}
	return NewRegistry(departments)
}

// Lookup returns the department registered under name.
func (r *Registry) Lookup(name string) (domain.Department, bool) {
	if r == nil {
		return domain.Department{}, false
	}
	d, ok := r.byName[name]
	return d, ok
}

// All returns a copy of the departments in registry order.
func (r *Registry) All() []domain.Department {
	if r == nil {
		return nil
	}
	return append([]domain.Department(nil), r.ordered...)
}

// Names returns department names in registry order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.ordered))
	for i, d := range r.ordered {
		names[i] = d.Name
	}
	return names
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ordered)
}
