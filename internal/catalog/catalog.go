package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/gridstash/pkg/inventory"
)

// ErrInvalidCatalog is returned for assets that fail schema or item validation.
var ErrInvalidCatalog = errors.New("catalog: invalid item asset")

// document mirrors the YAML layout of an item asset file.
type document struct {
	Items []itemEntry `yaml:"items"`
}

type itemEntry struct {
	Code        string          `yaml:"code"`
	ID          int64           `yaml:"id"`
	Name        string          `yaml:"name"`
	Category    string          `yaml:"category"`
	Description string          `yaml:"description"`
	Icon        string          `yaml:"icon"`
	Capacity    int             `yaml:"capacity"`
	Shape       inventory.Shape `yaml:"shape"`
}

func (e itemEntry) itemType() inventory.ItemType {
	return inventory.ItemType{
		Code:        inventory.ItemCode(e.Code),
		NumericID:   inventory.RegistryID(e.ID),
		Name:        e.Name,
		Category:    e.Category,
		Description: e.Description,
		Icon:        e.Icon,
		Capacity:    e.Capacity,
		Shape:       e.Shape,
	}
}

// Loader reads item type assets into a registry.
type Loader struct {
	schema *gojsonschema.Schema
	logger *zap.Logger
}

// NewLoader compiles the asset schema.
func NewLoader(logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(itemSchema))
	if err != nil {
		return nil, fmt.Errorf("compile item schema: %w", err)
	}
	return &Loader{schema: schema, logger: logger}, nil
}

// Load reads a single YAML file, or every *.yaml / *.yml file of a directory
// in name order, into a new registry.
func (l *Loader) Load(path string) (*inventory.Registry, error) {
	reg := inventory.NewRegistry()
	if err := l.LoadInto(reg, path); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadInto adds the assets found at path to reg. Item codes must be unique
// across all files.
func (l *Loader) LoadInto(reg *inventory.Registry, path string) error {
	files, err := assetFiles(path)
	if err != nil {
		return err
	}
	seen := make(map[inventory.ItemCode]string)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		types, err := l.Parse(data, file)
		if err != nil {
			return err
		}
		for _, t := range types {
			if prev, dup := seen[t.Code]; dup {
				return fmt.Errorf("%w: %s: item %s already defined in %s", ErrInvalidCatalog, file, t.Code, prev)
			}
			seen[t.Code] = file
			if _, err := reg.Register(t); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, file, err)
			}
		}
		l.logger.Info("item assets loaded", zap.String("file", file), zap.Int("items", len(types)))
	}
	return nil
}

// Parse validates one YAML document against the asset schema and decodes its
// item types. source is only used in error messages.
func (l *Loader) Parse(data []byte, source string) ([]inventory.ItemType, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, source, err)
	}
	result, err := l.schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, source, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidCatalog, source, strings.Join(msgs, "; "))
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, source, err)
	}
	out := make([]inventory.ItemType, 0, len(doc.Items))
	for _, e := range doc.Items {
		t := e.itemType()
		if err := inventory.ValidateItemType(t); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, source, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func assetFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("catalog path: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
