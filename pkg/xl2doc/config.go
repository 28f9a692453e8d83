package xl2doc

import (
	"bytes"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// decodeOptions superimposes YAML data on opts. Unknown keys are rejected.
func decodeOptions(data []byte, opts *Options) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil {
		return fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return nil
}

// LoadOptions returns the default options overlaid with the YAML file at
// path, validated. An empty path yields the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read config file: %w", err)
	}
	// An empty document leaves the defaults in place.
	if len(bytes.TrimSpace(data)) > 0 {
		if err := decodeOptions(data, &opts); err != nil {
			return Options{}, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, nil
}

// DumpOptions renders opts as YAML.
func DumpOptions(opts Options) ([]byte, error) {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
