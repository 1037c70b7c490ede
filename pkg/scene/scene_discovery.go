package scene

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SceneInfo represents a built-in scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// preset adjusts the default options for one built-in scene
type preset struct {
	description string
	group       string
	apply       func(*Options)
}

const (
	groupOrbits   = "Orbits"
	groupLighting = "Lighting"
)

var presets = map[string]preset{
	"default": {
		description: "Satellite on a 4 unit prograde orbit",
		group:       groupOrbits,
		apply:       func(*Options) {},
	},
	"low-orbit": {
		description: "Fast orbit skimming the tallest terrain",
		group:       groupOrbits,
		apply: func(o *Options) {
			o.OrbitRadius = 2.8
			o.OrbitSpeed = 1.6
		},
	},
	"retrograde": {
		description: "Wide orbit running clockwise",
		group:       groupOrbits,
		apply: func(o *Options) {
			o.OrbitRadius = 5.0
			o.OrbitSpeed = -0.6
		},
	},
	"eclipse": {
		description: "Satellite starts between the sun and the planet",
		group:       groupLighting,
		apply: func(o *Options) {
			toLight := o.Light.ToLight()
			o.OrbitRadius = 3.0
			o.OrbitSpeed = 0.2
			o.OrbitAngle = math.Atan2(toLight.Y, toLight.X)
		},
	},
	"terminator": {
		description: "Light from the side so the day-night line faces the camera",
		group:       groupLighting,
		apply: func(o *Options) {
			o.Light.Direction.X, o.Light.Direction.Y, o.Light.Direction.Z = 0, 1, 0
		},
	},
}

// OptionsFor returns the options of the named built-in scene
func OptionsFor(id string, base Options) (Options, error) {
	p, ok := presets[id]
	if !ok {
		return Options{}, fmt.Errorf("unknown scene %q", id)
	}
	p.apply(&base)
	return base, nil
}

// SceneIDs returns the built-in scene identifiers in sorted order
func SceneIDs() []string {
	ids := make([]string, 0, len(presets))
	for id := range presets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListAllScenes returns the built-in scenes grouped by category, groups and
// scenes both sorted alphabetically
func ListAllScenes() ScenesResponse {
	groupMap := make(map[string][]SceneInfo)
	for _, id := range SceneIDs() {
		p := presets[id]
		groupMap[p.group] = append(groupMap[p.group], SceneInfo{
			ID:          id,
			DisplayName: titleCase(id),
			Description: p.description,
			Group:       p.group,
		})
	}

	groupNames := make([]string, 0, len(groupMap))
	for name := range groupMap {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	var response ScenesResponse
	for _, name := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: name, Scenes: groupMap[name]})
	}
	return response
}

// titleCase converts an identifier-style string to title case
// e.g., "low-orbit" -> "Low Orbit"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
