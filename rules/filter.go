// Package rules lets arena authors script extra grapple-target rejection
// rules beyond the built-in exclusion tag. A rules script defines:
//
//	allow := func(target) {
//	    // target.tags, target.mode, target.distance
//	    return true
//	}
package rules

import (
	"fmt"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

const dispatchSuffix = "\n__result := allow(__target)\n"

// Filter is a compiled target-filter script. Compile once, run per Fire.
type Filter struct {
	compiled *tengo.Compiled
}

// LoadFilter reads and compiles a rules script from disk.
func LoadFilter(path string) (*Filter, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	f, err := Compile(string(src))
	if err != nil {
		return nil, fmt.Errorf("rules: %s: %w", path, err)
	}
	return f, nil
}

// Compile builds a filter from script source.
func Compile(src string) (*Filter, error) {
	script := tengo.NewScript([]byte(src + dispatchSuffix))
	script.SetImports(stdlib.GetModuleMap("math", "text"))
	if err := script.Add("__target", map[string]interface{}{}); err != nil {
		return nil, err
	}
	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	return &Filter{compiled: compiled}, nil
}

// Allow evaluates the script against one candidate target.
func (f *Filter) Allow(tags []string, mode string, distance float64) (bool, error) {
	if f == nil || f.compiled == nil {
		return true, nil
	}

	tagValues := make([]interface{}, len(tags))
	for i, t := range tags {
		tagValues[i] = t
	}
	target := map[string]interface{}{
		"tags":     tagValues,
		"mode":     mode,
		"distance": distance,
	}

	c := f.compiled.Clone()
	if err := c.Set("__target", target); err != nil {
		return false, err
	}
	if err := c.Run(); err != nil {
		return false, err
	}
	return c.Get("__result").Bool(), nil
}
