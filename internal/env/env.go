// Package env resolves the albums API origin from the process environment.
package env

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/five82/albumdeck/internal/prefs"
)

// Variables holds the raw environment values. Missing keys stay empty and
// are not validated here.
type Variables struct {
	Protocol string `envconfig:"APPLICATION_PROTOCOL"`
	URL      string `envconfig:"APPLICATION_URL"`
	Port     string `envconfig:"APPLICATION_PORT"`
}

// Load reads APPLICATION_PROTOCOL, APPLICATION_URL and APPLICATION_PORT.
// Each dotenv file is loaded first and only fills keys the process
// environment does not already have; missing files are skipped.
func Load(dotenv ...string) (Variables, error) {
	for _, path := range dotenv {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Variables{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var v Variables
	if err := envconfig.Process("", &v); err != nil {
		return Variables{}, fmt.Errorf("read environment: %w", err)
	}
	return v, nil
}

// ApplicationProtocol returns APPLICATION_PROTOCOL, e.g. "http://".
func (v Variables) ApplicationProtocol() string { return v.Protocol }

// ApplicationURL returns APPLICATION_URL, the API host.
func (v Variables) ApplicationURL() string { return v.URL }

// ApplicationPort returns APPLICATION_PORT.
func (v Variables) ApplicationPort() string { return v.Port }

// BaseURL joins the three values as {protocol}{url}:{port}.
func (v Variables) BaseURL() string {
	return v.ApplicationProtocol() + v.ApplicationURL() + ":" + v.ApplicationPort()
}

// EnsureApplicationURL stores v.BaseURL() in the preferences at prefsPath
// unless an application URL is already stored, and returns the stored value.
func EnsureApplicationURL(prefsPath string, v Variables) (string, error) {
	current, err := prefs.Load(prefsPath)
	if err != nil {
		return "", fmt.Errorf("load prefs: %w", err)
	}
	if current.ApplicationURL != "" {
		return current.ApplicationURL, nil
	}

	composed := v.BaseURL()
	if _, err := prefs.Update(prefsPath, func(p *prefs.Prefs) {
		p.ApplicationURL = composed
	}); err != nil {
		return "", fmt.Errorf("persist application url: %w", err)
	}
	return composed, nil
}
