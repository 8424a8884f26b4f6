package stage

import (
	"os"
	"strings"

	"meridian/internal/services"
)

// RequireArtifact verifies an earlier stage left the named file behind.
// On failure it returns an error tagged with the caller's marker, suitable
// for stage Execute methods.
func RequireArtifact(marker error, operation, path string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(marker, "stage", operation,
			"required artifact was never recorded; an earlier stage did not run", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return services.Wrap(marker, "stage", operation,
			"required artifact missing on disk", err)
	}
	return nil
}
