package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// CheckSchemaCompatibility checks whether a persisted cache schema can be
// read by the current build. Returns nil if compatible, an
// ErrCodeCacheSchemaVersion or ErrCodeInvalidVersion error if not.
//
// Compatibility Rules:
//   - "main" on either side (development build) skips the check
//   - Major and minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 reads rows written by 1.2.5)
func CheckSchemaCompatibility(stored, current string) error {
	stored = strings.TrimPrefix(stored, "v")
	current = strings.TrimPrefix(current, "v")

	if stored == "main" || current == "main" {
		return nil
	}

	storedSemver, err := semver.NewVersion(stored)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid stored schema version '%s'", stored)
	}

	currentSemver, err := semver.NewVersion(current)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid current schema version '%s'", current)
	}

	if storedSemver.Major() != currentSemver.Major() {
		return errors.Newf(errors.ErrCodeCacheSchemaVersion,
			"major version mismatch: cache was written by schema %d.x.x but this build uses %d.x.x",
			storedSemver.Major(), currentSemver.Major())
	}

	if storedSemver.Minor() != currentSemver.Minor() {
		return errors.Newf(errors.ErrCodeCacheSchemaVersion,
			"minor version mismatch: cache was written by schema %d.%d.x but this build uses %d.%d.x",
			storedSemver.Major(), storedSemver.Minor(),
			currentSemver.Major(), currentSemver.Minor())
	}

	return nil
}
