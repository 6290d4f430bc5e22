// Package directory holds the fixed country → city table that constrains
// listing locations and the cascading location selectors.
//
// The table is embedded JSON, parsed once on first use and never mutated.
// Every accessor returns copies so callers cannot alter the shared data.
package directory

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed directorydata/countries.json
var FS embed.FS

// Entry is one country and its ordered list of cities.
type Entry struct {
	Country string   `json:"country"`
	Area    string   `json:"area"`
	Cities  []string `json:"cities"`
}

// AreaGroup is a set of countries that share a world area (e.g. "North Africa").
type AreaGroup struct {
	Area      string
	Countries []string
}

var (
	loadOnce  sync.Once
	entries   []Entry
	byCountry map[string]Entry
	sorted    []string
	loadErr   error
)

func load() {
	loadOnce.Do(func() {
		data, err := FS.ReadFile("directorydata/countries.json")
		if err != nil {
			loadErr = err
			return
		}

		var list []Entry
		if err := json.Unmarshal(data, &list); err != nil {
			loadErr = err
			return
		}

		idx := make(map[string]Entry, len(list))
		names := make([]string, 0, len(list))
		for _, e := range list {
			if e.Country == "" || len(e.Cities) == 0 {
				loadErr = fmt.Errorf("directory: entry %q has no cities", e.Country)
				return
			}
			if _, dup := idx[e.Country]; dup {
				loadErr = fmt.Errorf("directory: duplicate country %q", e.Country)
				return
			}
			idx[e.Country] = e
			names = append(names, e.Country)
		}
		sort.Strings(names)

		entries = list
		byCountry = idx
		sorted = names
	})
}

// Load parses the embedded table. Call it at startup to fail fast.
func Load() error {
	load()
	return loadErr
}

// Regions returns every country name in alphabetical order.
func Regions() []string {
	load()
	if loadErr != nil {
		return nil
	}
	out := make([]string, len(sorted))
	copy(out, sorted)
	return out
}

// SubRegions returns the ordered cities for a country, or nil if the
// country is not in the directory.
func SubRegions(country string) []string {
	load()
	if loadErr != nil {
		return nil
	}
	e, ok := byCountry[country]
	if !ok {
		return nil
	}
	out := make([]string, len(e.Cities))
	copy(out, e.Cities)
	return out
}

// HasRegion reports whether country is a known directory region.
func HasRegion(country string) bool {
	load()
	if loadErr != nil {
		return false
	}
	_, ok := byCountry[country]
	return ok
}

// Valid reports whether city belongs to country's directory entry.
func Valid(country, city string) bool {
	load()
	if loadErr != nil {
		return false
	}
	e, ok := byCountry[country]
	if !ok {
		return false
	}
	for _, c := range e.Cities {
		if c == city {
			return true
		}
	}
	return false
}

// Areas groups the countries by world area, in table order, with the
// countries of each area sorted by name.
func Areas() []AreaGroup {
	load()
	if loadErr != nil {
		return nil
	}
	var out []AreaGroup
	pos := make(map[string]int)
	for _, e := range entries {
		i, ok := pos[e.Area]
		if !ok {
			i = len(out)
			pos[e.Area] = i
			out = append(out, AreaGroup{Area: e.Area})
		}
		out[i].Countries = append(out[i].Countries, e.Country)
	}
	for i := range out {
		sort.Strings(out[i].Countries)
	}
	return out
}
