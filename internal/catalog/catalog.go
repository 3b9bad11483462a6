// Package catalog exposes the static device/problem reference data.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type problemDoc struct {
	Key      string   `yaml:"key"`
	Title    string   `yaml:"title"`
	Solution string   `yaml:"solution"`
	VideoURL string   `yaml:"video_url"`
	Steps    []string `yaml:"steps"`
}

type deviceDoc struct {
	Key            string       `yaml:"key"`
	Name           string       `yaml:"name"`
	Image          string       `yaml:"image"`
	Aliases        []string     `yaml:"aliases"`
	DirectSupport  bool         `yaml:"direct_support"`
	SupportMessage string       `yaml:"support_message"`
	Problems       []problemDoc `yaml:"problems"`
}

type catalogDoc struct {
	Devices []deviceDoc `yaml:"devices"`
}

// Catalog is a read-only, ordered view over devices and their problems.
type Catalog struct {
	devices []domain.Device
	index   map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file with the embedded schema.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Devices) == 0 {
		return nil, fmt.Errorf("catalog has no devices")
	}

	c := &Catalog{index: make(map[string]int, len(doc.Devices))}
	for _, d := range doc.Devices {
		key := strings.TrimSpace(d.Key)
		if key == "" || d.Name == "" {
			return nil, fmt.Errorf("device without key or name")
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate device %q", key)
		}
		if !d.DirectSupport && len(d.Problems) == 0 {
			return nil, fmt.Errorf("device %q has no problems and is not direct_support", key)
		}

		dev := domain.Device{
			Key:            key,
			Name:           d.Name,
			Image:          d.Image,
			Aliases:        d.Aliases,
			DirectSupport:  d.DirectSupport,
			SupportMessage: d.SupportMessage,
		}
		if !d.DirectSupport {
			seen := make(map[string]bool, len(d.Problems))
			for _, p := range d.Problems {
				if p.Key == "" || p.Title == "" {
					return nil, fmt.Errorf("device %q: problem without key or title", key)
				}
				if seen[p.Key] {
					return nil, fmt.Errorf("device %q: duplicate problem %q", key, p.Key)
				}
				seen[p.Key] = true
				dev.Problems = append(dev.Problems, domain.Problem{
					Key:      p.Key,
					Title:    p.Title,
					Solution: p.Solution,
					VideoURL: p.VideoURL,
					Steps:    p.Steps,
				})
			}
		}

		c.index[key] = len(c.devices)
		c.devices = append(c.devices, dev)
	}
	return c, nil
}

// ListDevices returns the devices in menu order.
func (c *Catalog) ListDevices() []domain.Device {
	out := make([]domain.Device, len(c.devices))
	copy(out, c.devices)
	return out
}

// Device looks up a device by key.
func (c *Catalog) Device(key string) (domain.Device, bool) {
	i, ok := c.index[key]
	if !ok {
		return domain.Device{}, false
	}
	return c.devices[i], true
}

// ListProblems returns the problems of a device in menu order; nil for an
// unknown or direct-support device.
func (c *Catalog) ListProblems(deviceKey string) []domain.Problem {
	d, ok := c.Device(deviceKey)
	if !ok || len(d.Problems) == 0 {
		return nil
	}
	out := make([]domain.Problem, len(d.Problems))
	copy(out, d.Problems)
	return out
}

// Resolve returns the solution record for a device/problem pair.
func (c *Catalog) Resolve(deviceKey, problemKey string) (domain.Problem, bool) {
	d, ok := c.Device(deviceKey)
	if !ok {
		return domain.Problem{}, false
	}
	for _, p := range d.Problems {
		if p.Key == problemKey {
			return p, true
		}
	}
	return domain.Problem{}, false
}

// ImageURL joins a public base URL with a catalog image reference.
func ImageURL(baseURL, image string) string {
	if image == "" || baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/teclados/" + image
}
