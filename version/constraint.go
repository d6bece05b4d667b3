// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package version

import (
	"fmt"

	gvers "github.com/hashicorp/go-version"
)

// SatisfiesConstraint reports an error when the running binary's version
// does not satisfy the constraint, for example ">= 0.2, < 1.0". An empty
// constraint is always satisfied. Prerelease versions are compared by their
// core version.
func SatisfiesConstraint(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := gvers.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := gvers.NewVersion(Get().Version)
	if err != nil {
		return fmt.Errorf("unable to parse binary version %q: %w", Get().Version, err)
	}
	if !c.Check(v.Core()) {
		return fmt.Errorf("stepledger v%s does not satisfy the required version %q", v.Core(), constraint)
	}
	return nil
}
