// Package panel holds the user-facing copy of the marketplace dashboard and
// the control ids its buttons and forms carry.
package panel

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
)

//go:embed default.yaml
var defaultCopy []byte

// Copy is every string the dashboard shows.
type Copy struct {
	Dashboard struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Footer      string `yaml:"footer"`
	} `yaml:"dashboard"`

	// Buttons maps a category name, "support" or "info" to a label.
	Buttons map[string]string `yaml:"buttons"`

	SellForm struct {
		Title                  string            `yaml:"title"`
		Titles                 map[string]string `yaml:"titles"`
		NameLabel              string            `yaml:"name_label"`
		NamePlaceholder        string            `yaml:"name_placeholder"`
		DescriptionLabel       string            `yaml:"description_label"`
		DescriptionPlaceholder string            `yaml:"description_placeholder"`
		PriceLabel             string            `yaml:"price_label"`
		PricePlaceholder       string            `yaml:"price_placeholder"`
	} `yaml:"sell_form"`

	Info struct {
		Title string `yaml:"title"`
		Body  string `yaml:"body"`
	} `yaml:"info"`
}

// Default returns the built-in copy.
func Default() *Copy {
	var c Copy
	if err := yaml.Unmarshal(defaultCopy, &c); err != nil {
		panic(fmt.Sprintf("panel: embedded copy is invalid: %v", err))
	}
	return &c
}

// Loader reads copy overrides from a YAML file.
type Loader struct {
	filePath string
}

// NewLoader creates a loader. An empty path means defaults only.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load returns the default copy with the file's values laid over it. Keys
// missing from the file keep their default.
func (l *Loader) Load() (*Copy, error) {
	c := Default()
	if l.filePath == "" {
		return c, nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read panel file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse panel yaml: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Copy) validate() error {
	if strings.TrimSpace(c.Dashboard.Title) == "" {
		return fmt.Errorf("panel: dashboard.title is empty")
	}
	if strings.TrimSpace(c.SellForm.Title) == "" {
		return fmt.Errorf("panel: sell_form.title is empty")
	}
	for _, cat := range domain.Categories() {
		if strings.TrimSpace(c.ButtonLabel(string(cat))) == "" {
			return fmt.Errorf("panel: no button label for %s", cat)
		}
	}
	return nil
}

// ButtonLabel returns the label for key, falling back to the key itself.
func (c *Copy) ButtonLabel(key string) string {
	if label, ok := c.Buttons[key]; ok && label != "" {
		return label
	}
	return key
}

// FormTitle returns the sell form title for a category.
func (c *Copy) FormTitle(cat domain.Category) string {
	if t, ok := c.SellForm.Titles[string(cat)]; ok && t != "" {
		return t
	}
	return c.SellForm.Title
}

// InfoRecord renders the "how it works" message.
func (c *Copy) InfoRecord() domain.DisplayRecord {
	return domain.DisplayRecord{
		Title:       c.Info.Title,
		Description: strings.TrimSpace(c.Info.Body),
		Color:       domain.ColorInfo,
	}
}

// DashboardRecord renders the dashboard header.
func (c *Copy) DashboardRecord() domain.DisplayRecord {
	return domain.DisplayRecord{
		Title:       c.Dashboard.Title,
		Description: strings.TrimSpace(c.Dashboard.Description),
		Footer:      c.Dashboard.Footer,
		Color:       domain.ColorListing,
	}
}
