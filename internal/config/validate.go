package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// languagePattern matches the provider's ISO 639-1 codes with an optional region, e.g. "en" or "pt-BR".
var languagePattern = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() []Issue {
	var issues []Issue
	add := func(key, format string, args ...any) {
		issues = append(issues, Issue{Key: key, Reason: fmt.Sprintf(format, args...)})
	}

	switch {
	case c.Database.Path == "":
		add("database.path", "required")
	case c.Database.Path != ":memory:" && isDir(c.Database.Path):
		add("database.path", "%s is a directory, expected the catalog file", c.Database.Path)
	}

	if c.Assets.Root == "" {
		add("assets.root", "required")
	} else if fi, err := os.Stat(c.Assets.Root); err == nil && !fi.IsDir() {
		add("assets.root", "%s is a file, expected a directory", c.Assets.Root)
	}
	if c.Assets.Concurrency < 0 {
		add("assets.concurrency", "must be positive, got %d", c.Assets.Concurrency)
	}
	if c.Assets.ImageBaseURL != "" {
		if u, err := url.Parse(c.Assets.ImageBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("assets.image_base_url", "must be an absolute URL, got %q", c.Assets.ImageBaseURL)
		}
	}

	if c.TMDB.Language != "" && !languagePattern.MatchString(c.TMDB.Language) {
		add("tmdb.language", "must look like \"en\" or \"en-US\", got %q", c.TMDB.Language)
	}
	if c.TMDB.CacheTTL.Duration < 0 {
		add("tmdb.cache_ttl", "must not be negative, got %s", c.TMDB.CacheTTL)
	}

	if !validLogLevels[c.Log.Level] {
		add("log.level", "must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	if c.Log.File != "" && isDir(c.Log.File) {
		add("log.file", "%s is a directory", c.Log.File)
	}

	if c.User.Default == "" {
		add("user.default", "required")
	}

	return issues
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
