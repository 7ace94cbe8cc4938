package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/tradewatch/pkg/errors"
)

// CheckConfigCompatibility checks whether a config file written for fileVersion
// can be read by a build that understands schemaVersion.
//
// Rules:
//   - An empty fileVersion means the file predates versioning and is accepted
//   - "main" on either side skips the check
//   - Major and minor versions must match; patch may differ
//
// Examples:
//   - schema 1.0.0, file 1.0   -> OK
//   - schema 1.0.0, file 1.0.4 -> OK
//   - schema 1.0.0, file 1.1.0 -> ERROR (minor differs)
//   - schema 1.0.0, file 2.0.0 -> ERROR (major differs)
func CheckConfigCompatibility(schemaVersion, fileVersion string) error {
	schemaVersion = strings.TrimPrefix(strings.TrimSpace(schemaVersion), "v")
	fileVersion = strings.TrimPrefix(strings.TrimSpace(fileVersion), "v")

	if fileVersion == "" || schemaVersion == "main" || fileVersion == "main" {
		return nil
	}

	schemaSemver, err := semver.NewVersion(schemaVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid schema version '%s'", schemaVersion)
	}

	fileSemver, err := semver.NewVersion(fileVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", fileVersion)
	}

	if schemaSemver.Major() != fileSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: this build reads config %d.x.x but file declares %d.x.x",
			schemaSemver.Major(), fileSemver.Major())
	}

	if schemaSemver.Minor() != fileSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: this build reads config %d.%d.x but file declares %d.%d.x",
			schemaSemver.Major(), schemaSemver.Minor(),
			fileSemver.Major(), fileSemver.Minor())
	}

	return nil
}

// CheckConfigVersion checks fileVersion against this build's ConfigSchemaVersion.
func CheckConfigVersion(fileVersion string) error {
	return CheckConfigCompatibility(ConfigSchemaVersion, fileVersion)
}
