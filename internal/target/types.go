package target

// Kind selects how a browser target is driven.
type Kind string

const (
	// KindLocal launches a browser binary on this machine.
	KindLocal Kind = "local"
	// KindRemote navigates an already-running remote browser through an
	// automation session (the page keeps running after the session closes).
	KindRemote Kind = "remote"
)

// VersionPolicy controls how an extracted browser version is reported when
// results are published.
type VersionPolicy string

const (
	// VersionFull reports the extracted version verbatim.
	VersionFull VersionPolicy = "full"
	// VersionMajor reports only the leading component, e.g. "115.0.5790" -> "115".
	VersionMajor VersionPolicy = "major"
)

// Target is one configured browser under test.
type Target struct {
	Name          string        `yaml:"name"`
	Kind          Kind          `yaml:"kind"`
	Binary        string        `yaml:"binary,omitempty"`
	Args          []string      `yaml:"args,omitempty"`
	Branch        string        `yaml:"branch"`
	VersionPolicy VersionPolicy `yaml:"version_policy,omitempty"`
}
