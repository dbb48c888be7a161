package v1

const (
	// MaxRecords is the largest number of records a generate job may request.
	MaxRecords = 2_000_000
	// MaxVolumeSizeMB is the largest volume size a job may request.
	MaxVolumeSizeMB = 50
)

// Archive kinds accepted by OutputSpec.Archive.
const (
	ArchiveNone = "none"
	ArchiveZip  = "zip"
	ArchiveTar  = "tar"
)

// Job describes one run of the tool: either generating records or packing
// existing files.
type Job struct {
	Kind     string   `yaml:"kind,omitempty" json:"kind,omitempty" validate:"omitempty,eq=Job"`
	Metadata Metadata `yaml:"metadata" json:"metadata"`
	Spec     JobSpec  `yaml:"spec" json:"spec"`
}

type Metadata struct {
	Name string `yaml:"name" json:"name" validate:"required"`
}

// JobSpec holds the task (exactly one of Generate and Pack) and its output.
type JobSpec struct {
	Generate *GenerateSpec `yaml:"generate,omitempty" json:"generate,omitempty" validate:"required_without=Pack,excluded_with=Pack"`
	Pack     *PackSpec     `yaml:"pack,omitempty" json:"pack,omitempty" validate:"required_without=Generate"`
	Output   OutputSpec    `yaml:"output,omitempty" json:"output,omitempty"`
}

// GenerateSpec configures synthetic record generation.
type GenerateSpec struct {
	// Records is the number of records to generate.
	Records int `yaml:"records" json:"records" validate:"min=1,max=2000000"`
	// Format is the tabular file format: xlsx, csv or txt.
	Format string `yaml:"format" json:"format" validate:"oneof=xlsx csv txt"`
	// Seed makes the generated records reproducible. Zero picks a random seed.
	Seed uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	// Header writes the column names as the first row.
	Header bool `yaml:"header,omitempty" json:"header,omitempty"`
}

// PackSpec configures packing of files from the input directory.
type PackSpec struct {
	// Files lists the files to pack, relative to the input directory.
	// Empty packs every file of the input directory.
	Files []string `yaml:"files,omitempty" json:"files,omitempty" validate:"omitempty,dive,required" template:""`
	// DeleteAfter removes the packed files once the archive is written.
	// Ignored when the archive is split into volumes.
	DeleteAfter bool `yaml:"delete_after,omitempty" json:"delete_after,omitempty"`
}

// OutputSpec configures the produced file.
type OutputSpec struct {
	// Archive selects the archive format: none, zip or tar. Generate jobs
	// default to none; pack jobs default to zip, or tar when split.
	Archive string `yaml:"archive,omitempty" json:"archive,omitempty" validate:"omitempty,oneof=none zip tar"`
	// Compression of the archive stream: deflate or none for zip, zstd,
	// gzip or none for tar. Empty selects the format default.
	Compression string `yaml:"compression,omitempty" json:"compression,omitempty" validate:"omitempty,oneof=deflate zstd gzip none"`
	// MaxVolumeSizeMB splits the archive into volumes of at most this many
	// megabytes which are then fused into a single file.
	MaxVolumeSizeMB int `yaml:"max_volume_size_mb,omitempty" json:"max_volume_size_mb,omitempty" validate:"omitempty,min=1,max=50"`
	// Filename is the output name without extension (default: output).
	// Supports ${VAR} expansion.
	Filename string `yaml:"filename,omitempty" json:"filename,omitempty" template:""`
}
