package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
)

// LaunchSpec is the resolved command line for the backend process. An empty
// Command means there is nothing to launch.
type LaunchSpec struct {
	Command string
	Args    []string
}

// Empty reports whether there is no command to run.
func (s LaunchSpec) Empty() bool {
	return s.Command == ""
}

// Format selects the parser for a launch configuration document.
type Format string

// Supported launch configuration formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// ErrInvalidDocument is wrapped by ParseLaunchConfig when the document cannot
// be parsed at all.
var ErrInvalidDocument = errors.New("invalid launch configuration")

// FormatForPath picks the format from the file extension. Anything that is not
// .toml is read as JSON.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// ParseLaunchConfig extracts the entry for platform from a launch
// configuration document:
//
//	{"linux": {"command": "uvicorn", "args": ["app.main:app", "--port", "8000"]}}
//
// A missing entry, a missing or non-string command, or a missing args array all
// yield empty values rather than an error. Non-string args are dropped. The
// error is reserved for documents that do not parse.
func ParseLaunchConfig(data []byte, format Format, platform Platform) (LaunchSpec, error) {
	switch format {
	case FormatTOML:
		return parseTOML(data, platform)
	default:
		return parseJSON(data, platform)
	}
}

func parseJSON(data []byte, platform Platform) (LaunchSpec, error) {
	if !gjson.ValidBytes(data) {
		return LaunchSpec{}, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}

	spec := LaunchSpec{Args: []string{}}
	if !platform.Supported() {
		return spec, nil
	}

	entry := gjson.GetBytes(data, string(platform))
	if !entry.IsObject() {
		return spec, nil
	}

	if command := entry.Get("command"); command.Type == gjson.String {
		spec.Command = command.Str
	}

	if args := entry.Get("args"); args.IsArray() {
		args.ForEach(func(_, arg gjson.Result) bool {
			if arg.Type == gjson.String {
				spec.Args = append(spec.Args, arg.Str)
			}
			return true
		})
	}

	return spec, nil
}

func parseTOML(data []byte, platform Platform) (LaunchSpec, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return LaunchSpec{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	spec := LaunchSpec{Args: []string{}}
	if !platform.Supported() {
		return spec, nil
	}

	entry, ok := doc[string(platform)].(map[string]any)
	if !ok {
		return spec, nil
	}

	if command, ok := entry["command"].(string); ok {
		spec.Command = command
	}

	if args, ok := entry["args"].([]any); ok {
		for _, arg := range args {
			if s, ok := arg.(string); ok {
				spec.Args = append(spec.Args, s)
			}
		}
	}

	return spec, nil
}
