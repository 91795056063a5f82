package ir

// Version constants for the persisted artifact shape.
const (
	// ArtifactVersion is the artifact schema version. Bump only with a
	// migration path; artifacts recorded by older versions must replay.
	ArtifactVersion = "1"

	// EngineVersion is the interception engine version.
	EngineVersion = "0.1.0"
)
