package common

import (
	"errors"
	"fmt"
)

const (
	major = 0
	minor = 3
	patch = 0

	// Versions from which the persisted ledger can be opened.
	// These should be used in a group (so prevMinor can be equal to minor if there are
	// any migration routines.
	prevMajor = 0
	prevMinor = 2
	prevPatch = 0

	Version = major*1_000_000 + minor*1_000 + patch

	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch
)

// ErrVersionMismatch is returned by CheckVersion in case of error.
var ErrVersionMismatch = errors.New("previous version mismatch")

// CheckVersion checks that the version of persisted data is not less than
// PrevVersion and not greater than Version.
func CheckVersion(from int) error {
	if from < PrevVersion {
		return fmt.Errorf("%w: expected >=%d, got %d", ErrVersionMismatch, PrevVersion, from)
	}
	if from > Version {
		return fmt.Errorf("%w: data of newer version %d", ErrVersionMismatch, from)
	}
	return nil
}

// VersionString formats a numeric version as "major.minor.patch".
func VersionString(v int) string {
	return fmt.Sprintf("%d.%d.%d", v/1_000_000, v/1_000%1_000, v%1_000)
}
