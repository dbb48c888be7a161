package engine

type Named interface {
	Name() string
	Kind() string
}

const (
	// ISO8601Basic is a URL-safe timestamp format without colons.
	// This is the recommended format for archive names and filesystem paths.
	ISO8601Basic = "20060102T150405Z"

	// MegaByte is the unit used for volume sizes.
	MegaByte = 1024 * 1024
)
