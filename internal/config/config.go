// Package config loads the executor's tunables. The teacher hard-codes
// its VM's limits (1024-entry stack, 256 locals); this module exposes
// them as a YAML document so a host can tune GC pressure and recursion
// depth without a recompile, while still defaulting sanely with the
// zero-value Config.
package config

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Default tunables, matching the base spec's suggested values.
const (
	DefaultGCThreshold     = 1000
	DefaultStackDepthLimit = 0 // 0 = unlimited
	DefaultFramePoolPrefix = 128
)

// Config holds the executor's tunables plus a per-instance correlation
// id for log correlation across independently-running VMs.
type Config struct {
	GCThreshold     int  `yaml:"gc_threshold"`
	StackDepthLimit int  `yaml:"stack_depth_limit"`
	FramePoolPrefix int  `yaml:"frame_pool_prefix"`
	Debug           bool `yaml:"debug"`

	// InstanceID correlates this instance's log lines with others
	// running in the same process — base spec §5 "multiple independent
	// VM instances may run in parallel".
	InstanceID uuid.UUID `yaml:"-"`
}

// Default returns a Config populated with the base spec's suggested
// tunables and a freshly minted instance id.
func Default() Config {
	return Config{
		GCThreshold:     DefaultGCThreshold,
		StackDepthLimit: DefaultStackDepthLimit,
		FramePoolPrefix: DefaultFramePoolPrefix,
		InstanceID:      uuid.New(),
	}
}

// Load reads a YAML document from path, starting from Default() so any
// field the document omits keeps its default value, and stamps a fresh
// InstanceID regardless of what (if anything) the document says about it.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %q", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %q", path)
	}
	cfg.InstanceID = uuid.New()
	return cfg, nil
}

// applyDefaults resets a non-positive GCThreshold or FramePoolPrefix
// (e.g. an explicit "gc_threshold: 0" in the document) to its default.
func (c *Config) applyDefaults() {
	if c.GCThreshold <= 0 {
		c.GCThreshold = DefaultGCThreshold
	}
	if c.FramePoolPrefix <= 0 {
		c.FramePoolPrefix = DefaultFramePoolPrefix
	}
}

// UnmarshalYAML lets a partial document (e.g. just "debug: true") still
// end up with sane defaults for everything else.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	aux := plain(Default())
	if err := value.Decode(&aux); err != nil {
		return err
	}
	*c = Config(aux)
	c.applyDefaults()
	return nil
}

// DebugTrace renders a human-readable summary of pool pressure for the
// debug-toggle log path — base spec §6 "Debug toggle".
func DebugTrace(instanceID uuid.UUID, liveObjects, allocsSinceGC, gcThreshold int) string {
	return "[" + instanceID.String() + "] pool holds " +
		humanize.Comma(int64(liveObjects)) + " objects, " +
		humanize.Comma(int64(allocsSinceGC)) + " of " +
		humanize.Comma(int64(gcThreshold)) + " allocations since last GC"
}
