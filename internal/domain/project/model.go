package project

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// Known boolean settings.
const (
	SettingAssistedTagging = "assisted_tagging"
	SettingTemporal        = "temporal"
	SettingUseGPU          = "use_gpu"
)

// KnownSettings lists the settings that may be toggled.
var KnownSettings = []string{SettingAssistedTagging, SettingTemporal, SettingUseGPU}

// Timer defaults used by the recording UI, in seconds.
const (
	DefaultCountdown = 3
	DefaultRecording = 5
)

// Config is the metadata document stored at the root of a project.
type Config struct {
	Name          string           `json:"name"`
	DateCreated   string           `json:"date_created,omitempty"`
	Classes       map[string][]int `json:"classes"`
	Tags          []Tag            `json:"tags"`
	Settings      map[string]bool  `json:"settings"`
	TimerDefaults TimerDefaults    `json:"timer_defaults"`

	// Extra keeps top-level keys this version does not know about.
	Extra map[string]json.RawMessage `json:"-"`
}

// Tag is one entry of the temporal tag vocabulary. Its index in
// Config.Tags is its identity.
type Tag struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// TimerDefaults holds recording UI durations.
type TimerDefaults struct {
	Countdown int `json:"countdown"`
	Recording int `json:"recording"`
}

// Entry is a registered project.
type Entry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Exists    bool      `json:"exists"`
	CreatedAt time.Time `json:"created_at"`
}

// SplitStats summarizes one class in one split.
type SplitStats struct {
	Total  int      `json:"total"`
	Tagged int      `json:"tagged"`
	Videos []string `json:"videos"`
}

// Stats describes the data currently present for each class.
type Stats struct {
	Name    string                           `json:"name"`
	Path    string                           `json:"path"`
	Classes map[string]map[string]SplitStats `json:"classes"`
	Tags    []Tag                            `json:"tags"`
}

// PathInfo answers the questions a project picker asks about a location.
type PathInfo struct {
	NameUnique       bool     `json:"name_unique"`
	PathPrefix       string   `json:"path_prefix"`
	ProjectDir       string   `json:"project_dir"`
	ProjectDirExists bool     `json:"project_dir_exists"`
	PathExists       bool     `json:"path_exists"`
	PathUnique       bool     `json:"path_unique"`
	Subdirs          []string `json:"subdirs"`
	VideoFiles       []string `json:"video_files"`
}

// NewConfig returns a fresh document for a project.
func NewConfig(name string, created time.Time) *Config {
	return &Config{
		Name:        name,
		DateCreated: created.Format(time.DateOnly),
		Classes:     map[string][]int{},
		Tags:        []Tag{},
		Settings: map[string]bool{
			SettingAssistedTagging: false,
			SettingTemporal:        false,
			SettingUseGPU:          false,
		},
		TimerDefaults: TimerDefaults{
			Countdown: DefaultCountdown,
			Recording: DefaultRecording,
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Classes = make(map[string][]int, len(c.Classes))
	for name, tags := range c.Classes {
		out.Classes[name] = slices.Clone(tags)
	}
	out.Tags = slices.Clone(c.Tags)
	out.Settings = maps.Clone(c.Settings)
	out.Extra = maps.Clone(c.Extra)
	return &out
}

// ClassNames returns class names in lexical order.
func (c *Config) ClassNames() []string {
	return slices.Sorted(maps.Keys(c.Classes))
}

// HasClass reports whether name is a class of the project.
func (c *Config) HasClass(name string) bool {
	_, ok := c.Classes[name]
	return ok
}

// Setting returns a boolean setting, false when absent.
func (c *Config) Setting(name string) bool {
	return c.Settings[name]
}

// ToggleSetting flips a known setting and returns its new value.
func (c *Config) ToggleSetting(name string) (bool, error) {
	if !slices.Contains(KnownSettings, name) {
		return false, ErrUnknownSetting
	}
	if c.Settings == nil {
		c.Settings = map[string]bool{}
	}
	c.Settings[name] = !c.Settings[name]
	return c.Settings[name], nil
}

// normalize fills nil collections so the document always carries them.
func (c *Config) normalize() {
	c.fillEmpty()
	for name, tags := range c.Classes {
		if tags == nil {
			c.Classes[name] = []int{}
		}
	}
}

func (c *Config) fillEmpty() {
	if c.Classes == nil {
		c.Classes = map[string][]int{}
	}
	if c.Tags == nil {
		c.Tags = []Tag{}
	}
	if c.Settings == nil {
		c.Settings = map[string]bool{}
	}
}

var knownConfigKeys = []string{"name", "date_created", "classes", "tags", "settings", "timer_defaults"}

type configFields Config

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (c *Config) UnmarshalJSON(data []byte) error {
	var fields configFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range knownConfigKeys {
		delete(raw, key)
	}

	*c = Config(fields)
	c.Extra = nil
	if len(raw) > 0 {
		c.Extra = raw
	}
	c.normalize()
	return nil
}

// MarshalJSON encodes the known fields and merges Extra back in.
func (c Config) MarshalJSON() ([]byte, error) {
	c.fillEmpty()
	known, err := json.Marshal(configFields(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(c.Extra)+len(knownConfigKeys))
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for key, value := range c.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}
