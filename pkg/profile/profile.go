// Package profile holds the per-edition gains and limits.  The set of
// editions is closed; a profile is chosen once at start up and never changes.
package profile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/motors"
)

const (
	DefaultOverridePath = "/cfg/rotation-resist.yaml"
	DefaultInUsePath    = "/cfg/rotation-resist-in-use.yaml"
)

type Edition int

const (
	Standard Edition = iota
	Turtle
	Hyper
)

var ErrUnknown = errors.New("unknown edition")

type Profile struct {
	Edition   Edition `yaml:"-"`
	Name      string  `yaml:"name"`
	MaxSpeed  int     `yaml:"max_speed"`
	Kp        float64 `yaml:"kp"`
	Kd        float64 `yaml:"kd"`
	FlipLeft  bool    `yaml:"flip_left"`
	FlipRight bool    `yaml:"flip_right"`
}

func (p Profile) String() string {
	return fmt.Sprintf("%s(max=%d kp=%g kd=%g flip=%v/%v)", p.Name, p.MaxSpeed, p.Kp, p.Kd, p.FlipLeft, p.FlipRight)
}

var builtin = map[Edition]Profile{
	Standard: {Edition: Standard, Name: "Standard", MaxSpeed: 3000, Kp: 160, Kd: 4},
	// Turtle and Hyper gains have not been tuned on hardware yet.
	Turtle: {Edition: Turtle, Name: "Turtle", MaxSpeed: 6000, Kp: 200, Kd: 0},
	Hyper:  {Edition: Hyper, Name: "Hyper", MaxSpeed: 1500, Kp: 200, Kd: 0, FlipLeft: true, FlipRight: true},
}

func (e Edition) String() string {
	if p, ok := builtin[e]; ok {
		return p.Name
	}
	return fmt.Sprintf("Edition(%d)", int(e))
}

// Names returns the edition names in menu order.
func Names() []string {
	var editions []Edition
	for e := range builtin {
		editions = append(editions, e)
	}
	sort.Slice(editions, func(i, j int) bool { return editions[i] < editions[j] })
	names := make([]string, len(editions))
	for i, e := range editions {
		names[i] = builtin[e].Name
	}
	return names
}

func Get(e Edition) (Profile, error) {
	p, ok := builtin[e]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %d", ErrUnknown, int(e))
	}
	return p, nil
}

// ByName looks up a built-in profile, ignoring case.
func ByName(name string) (Profile, error) {
	for _, p := range builtin {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnknown, name, strings.Join(Names(), ", "))
}

type overrideFile struct {
	Profiles []override `yaml:"profiles"`
}

// override is one entry of the override file.  Keys left out of the file are
// nil and keep the built-in value.
type override struct {
	Name      string   `yaml:"name"`
	MaxSpeed  *int     `yaml:"max_speed"`
	Kp        *float64 `yaml:"kp"`
	Kd        *float64 `yaml:"kd"`
	FlipLeft  *bool    `yaml:"flip_left"`
	FlipRight *bool    `yaml:"flip_right"`
}

type inUseFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// ApplyOverrides replaces the gains and limits of p with the keys set in the
// entry of the same name in the YAML document, if there is one.
func ApplyOverrides(p Profile, doc []byte) (Profile, error) {
	var f overrideFile
	if err := yaml.UnmarshalStrict(doc, &f); err != nil {
		return p, fmt.Errorf("parse profile overrides: %w", err)
	}
	for _, o := range f.Profiles {
		if _, err := ByName(o.Name); err != nil {
			return p, err
		}
		if !strings.EqualFold(o.Name, p.Name) {
			continue
		}
		if o.MaxSpeed != nil {
			if *o.MaxSpeed <= 0 || *o.MaxSpeed > motors.MaxSpeed {
				return p, fmt.Errorf("profile %s: max_speed must be in 1..%d, got %d",
					p.Name, motors.MaxSpeed, *o.MaxSpeed)
			}
			p.MaxSpeed = *o.MaxSpeed
		}
		if o.Kp != nil {
			p.Kp = *o.Kp
		}
		if o.Kd != nil {
			p.Kd = *o.Kd
		}
		if o.FlipLeft != nil {
			p.FlipLeft = *o.FlipLeft
		}
		if o.FlipRight != nil {
			p.FlipRight = *o.FlipRight
		}
	}
	return p, nil
}

// Load selects the named profile and applies the override file at path.  A
// missing override file is not an error.
func Load(name, overridePath string) (Profile, error) {
	p, err := ByName(name)
	if err != nil {
		return Profile{}, err
	}
	doc, err := os.ReadFile(overridePath)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	} else if err != nil {
		return Profile{}, err
	}
	return ApplyOverrides(p, doc)
}

// WriteInUse records the effective profile, for checking what a run used.
func WriteInUse(p Profile, path string) error {
	out, err := yaml.Marshal(&inUseFile{Profiles: []Profile{p}})
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0666)
}
