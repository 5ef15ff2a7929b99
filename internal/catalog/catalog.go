// Package catalog holds the static habit, achievement and challenge
// definitions. A Catalog is loaded once at startup and handed to the engine.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"execedge/internal/storage"
)

//go:embed default.yaml
var defaultYAML []byte

type AchievementType string

const (
	TypeStreak      AchievementType = "streak"
	TypeCompletion  AchievementType = "completion"
	TypeMilestone   AchievementType = "milestone"
	TypeConsistency AchievementType = "consistency"
)

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

const (
	CategoryMindset    = "mindset"
	CategoryStrategic  = "strategic"
	CategoryLeadership = "leadership"
	CategoryOverall    = "overall"
)

type Habit struct {
	ID          string   `yaml:"id" json:"id" validate:"required"`
	Title       string   `yaml:"title" json:"title" validate:"required"`
	Description string   `yaml:"description" json:"description"`
	Category    string   `yaml:"category" json:"category" validate:"required,oneof=mindset strategic leadership overall"`
	Points      int      `yaml:"points" json:"points" validate:"gte=0"`
	TargetRoles []string `yaml:"target_roles" json:"target_roles"`
	Frequency   string   `yaml:"frequency" json:"frequency" validate:"omitempty,oneof=daily weekly"`
	Retired     bool     `yaml:"retired" json:"retired"`
}

// Definition converts the catalog entry into its stored form.
func (h Habit) Definition() storage.HabitDefinition {
	freq := h.Frequency
	if freq == "" {
		freq = "daily"
	}
	return storage.HabitDefinition{
		ID:          h.ID,
		Title:       h.Title,
		Description: h.Description,
		Category:    h.Category,
		Points:      h.Points,
		TargetRoles: h.TargetRoles,
		Frequency:   freq,
		Active:      !h.Retired,
	}
}

type AchievementDefinition struct {
	ID          string          `yaml:"id" json:"id" validate:"required"`
	Title       string          `yaml:"title" json:"title" validate:"required"`
	Description string          `yaml:"description" json:"description"`
	Icon        string          `yaml:"icon" json:"icon"`
	Type        AchievementType `yaml:"type" json:"type" validate:"required,oneof=streak completion milestone consistency"`
	Requirement int             `yaml:"requirement" json:"requirement" validate:"gte=1"`
	Tier        Tier            `yaml:"tier" json:"tier" validate:"required,oneof=bronze silver gold platinum diamond"`
	Points      int             `yaml:"points" json:"points" validate:"gte=0"`
	Category    string          `yaml:"category,omitempty" json:"category,omitempty" validate:"omitempty,oneof=mindset strategic leadership overall"`
}

type ChallengeDefinition struct {
	ID          string          `yaml:"id" json:"id" validate:"required"`
	Title       string          `yaml:"title" json:"title" validate:"required"`
	Description string          `yaml:"description" json:"description"`
	Type        AchievementType `yaml:"type" json:"type" validate:"required,oneof=streak completion milestone consistency"`
	Target      int             `yaml:"target" json:"target" validate:"gte=1"`
	Deadline    time.Time       `yaml:"deadline" json:"deadline" validate:"required"`
	Points      int             `yaml:"points" json:"points" validate:"gte=0"`
	Category    string          `yaml:"category,omitempty" json:"category,omitempty" validate:"omitempty,oneof=mindset strategic leadership overall"`
}

type Catalog struct {
	Habits       []Habit                 `yaml:"habits" validate:"dive"`
	Achievements []AchievementDefinition `yaml:"achievements" validate:"dive"`
	Challenges   []ChallengeDefinition   `yaml:"challenges" validate:"dive"`
}

var validate = validator.New()

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic("catalog: invalid built-in catalog: " + err.Error())
	}
	return c
}

// Load reads and validates a YAML catalog file.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	if err := uniqueIDs("habit", len(c.Habits), func(i int) string { return c.Habits[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("achievement", len(c.Achievements), func(i int) string { return c.Achievements[i].ID }); err != nil {
		return err
	}
	return uniqueIDs("challenge", len(c.Challenges), func(i int) string { return c.Challenges[i].ID })
}

func uniqueIDs(kind string, n int, id func(int) string) error {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		if seen[id(i)] {
			return fmt.Errorf("validate catalog: duplicate %s id %q", kind, id(i))
		}
		seen[id(i)] = true
	}
	return nil
}

func (c *Catalog) Habit(id string) (Habit, bool) {
	for _, h := range c.Habits {
		if h.ID == id {
			return h, true
		}
	}
	return Habit{}, false
}

func (c *Catalog) Achievement(id string) (AchievementDefinition, bool) {
	for _, a := range c.Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return AchievementDefinition{}, false
}

func (c *Catalog) Challenge(id string) (ChallengeDefinition, bool) {
	for _, ch := range c.Challenges {
		if ch.ID == id {
			return ch, true
		}
	}
	return ChallengeDefinition{}, false
}
