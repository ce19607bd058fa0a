package domain

// CreateOptions holds the user's choices for a single scaffolding run.
type CreateOptions struct {
	// TargetDir is the project directory, as typed by the user.
	TargetDir string `validate:"required"`

	// YarnInstall runs the package install step (and everything that needs node_modules).
	YarnInstall bool

	// TypeScript keeps the template's .ts/.tsx sources. When false the
	// sources are converted to JavaScript after install.
	TypeScript bool

	// Overwrite allows scaffolding into a non-empty directory.
	Overwrite bool

	// Template optionally points at a template directory or archive URL.
	// Empty means the template bundled with the binary.
	Template string `validate:"omitempty,template_source"`
}

// DefaultCreateOptions mirrors the CLI flag defaults.
func DefaultCreateOptions() CreateOptions {
	return CreateOptions{
		YarnInstall: true,
	}
}

// ConvertToJS reports whether the TypeScript-to-JavaScript step applies.
// Conversion runs through the project's own tooling, so it needs an install.
func (o CreateOptions) ConvertToJS() bool {
	return !o.TypeScript && o.YarnInstall
}

// GenerateTypes reports whether the type generation step applies.
func (o CreateOptions) GenerateTypes() bool {
	return o.YarnInstall
}
