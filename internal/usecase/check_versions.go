package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/multierr"

	"github.com/v-gjy/redwood/internal/ctxlog"
	"github.com/v-gjy/redwood/internal/domain"
	"github.com/v-gjy/redwood/internal/ports"
)

// RequirementsDocsURL explains how to install supported node and yarn versions.
const RequirementsDocsURL = "https://redwoodjs.com/docs/tutorial/chapter1/prerequisites/#nodejs-and-yarn-versions"

// CheckVersions compares installed tool versions with a template's engines.
type CheckVersions struct {
	probe ports.VersionProbe
}

func NewCheckVersions(probe ports.VersionProbe) *CheckVersions {
	return &CheckVersions{probe: probe}
}

// Execute checks every engine and returns all results. When any engine is
// unsatisfied the error lists each mismatch on its own line.
func (uc *CheckVersions) Execute(ctx context.Context, engines domain.Engines) ([]domain.VersionCheck, error) {
	log := ctxlog.FromContext(ctx)

	var (
		checks []domain.VersionCheck
		errs   error
	)

	for _, name := range engines.Names() {
		wanted := strings.TrimSpace(engines[name])

		constraint, err := semver.NewConstraint(wanted)
		if err != nil {
			return checks, &domain.OpError{
				Op:   "versions.constraint",
				Kind: domain.KindInvalidConfig,
				Path: "package.json",
				Err:  fmt.Errorf("engines.%s %q: %w", name, wanted, err),
			}
		}

		check := domain.VersionCheck{Name: name, Wanted: wanted}

		have, err := uc.probe.Version(ctx, name)
		if err != nil {
			log.Debug("versions.probe_failed", "tool", name, "error", err)
			check.Have = "none (not found)"
			checks = append(checks, check)
			errs = multierr.Append(errs, fmt.Errorf("%s %s required, but it is not installed", name, wanted))
			continue
		}
		check.Have = have

		v, err := semver.NewVersion(have)
		if err == nil {
			check.Satisfied = constraint.Check(v)
		}
		log.Debug("versions.checked", "tool", name, "wanted", wanted, "have", have, "satisfied", check.Satisfied)

		checks = append(checks, check)
		if !check.Satisfied {
			errs = multierr.Append(errs, fmt.Errorf("%s %s required, but you have %s", name, wanted, have))
		}
	}

	if errs != nil {
		return checks, &domain.OpError{
			Op:   "versions.check",
			Kind: domain.KindVersionMismatch,
			Err:  &VersionError{Mismatches: multierr.Errors(errs)},
		}
	}
	return checks, nil
}

// VersionError lists every unsatisfied engine requirement.
type VersionError struct {
	Mismatches []error
}

func (e *VersionError) Error() string {
	var b strings.Builder
	b.WriteString("found version mismatches:")
	for _, m := range e.Mismatches {
		b.WriteString("\n")
		b.WriteString(m.Error())
	}
	b.WriteString("\n\nVisit requirements documentation:\n")
	b.WriteString(RequirementsDocsURL)
	return b.String()
}

func (e *VersionError) Is(target error) bool {
	return target == domain.ErrVersionMismatch
}

// AsVersionError unwraps err to a *VersionError.
func AsVersionError(err error) (*VersionError, bool) {
	var ve *VersionError
	ok := errors.As(err, &ve)
	return ve, ok
}
