package feed

import (
	"encoding/json"
	"os"
	"path/filepath"

	"feedscraper/pkg/errors"

	"github.com/tidwall/gjson"
)

// SampleProfiles is written when the CLI finds no profiles file
var SampleProfiles = []string{"elonmusk", "BillGates", "BarackObama"}

// ParseProfiles decodes a JSON array of usernames. Any other shape,
// including null or an array holding non-strings, is a config error.
func ParseProfiles(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrorTypeConfig, "profiles file is not valid JSON")
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, errors.New(errors.ErrorTypeConfig, "profiles file must contain an array of strings")
	}

	profiles := []string{}
	var bad *gjson.Result
	parsed.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.String {
			bad = &v
			return false
		}
		profiles = append(profiles, v.String())
		return true
	})
	if bad != nil {
		return nil, errors.New(errors.ErrorTypeConfig, "profiles file must contain an array of strings, found %s", bad.Raw)
	}
	return profiles, nil
}

// LoadProfiles reads and parses a profiles file
func LoadProfiles(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, err, "failed to read profiles file %s", path)
	}
	return ParseProfiles(data)
}

// WriteSampleProfiles creates path, and its parent directories, holding SampleProfiles
func WriteSampleProfiles(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, err, "failed to create profiles directory")
	}
	data, err := json.MarshalIndent(SampleProfiles, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, err, "failed to encode sample profiles")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, err, "failed to write profiles file")
	}
	return nil
}
