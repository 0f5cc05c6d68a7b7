package config

import (
	"fmt"
	"strings"
)

// Issue is one invalid setting, named by its TOML key.
type Issue struct {
	Key    string // e.g. "assets.concurrency"
	Reason string
}

func (i Issue) String() string {
	return i.Key + ": " + i.Reason
}

// UnsetVar is a ${NAME} reference with no value in the environment.
type UnsetVar struct {
	Name     string
	Key      string // TOML key whose value referenced it, empty outside key = value lines
	Hint     string // message of a ${NAME:?hint} reference
	Required bool   // written as ${NAME:?hint}
}

func (v UnsetVar) String() string {
	var b strings.Builder
	if v.Key != "" {
		b.WriteString(v.Key + ": ")
	}
	fmt.Fprintf(&b, "${%s} is not set", v.Name)
	if v.Hint != "" {
		b.WriteString(" (" + v.Hint + ")")
	}
	return b.String()
}

// ConfigError lists every problem found in one config file.
type ConfigError struct {
	Path   string
	Unset  []UnsetVar
	Issues []Issue
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "config %s:", e.Path)
	for _, v := range e.Unset {
		fmt.Fprintf(&b, "\n  %s", v)
	}
	for _, i := range e.Issues {
		fmt.Fprintf(&b, "\n  %s", i)
	}
	return b.String()
}

// HasErrors reports whether the file had any problem.
func (e *ConfigError) HasErrors() bool {
	return len(e.Unset) > 0 || len(e.Issues) > 0
}

// Keys returns the TOML keys with a problem, in report order, without repeats.
func (e *ConfigError) Keys() []string {
	var keys []string
	seen := map[string]bool{}
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, v := range e.Unset {
		add(v.Key)
	}
	for _, i := range e.Issues {
		add(i.Key)
	}
	return keys
}
