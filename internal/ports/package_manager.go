package ports

import "context"

// PackageManager runs package-manager commands inside a project directory.
type PackageManager interface {
	Install(ctx context.Context, dir string) error
	Run(ctx context.Context, dir string, args ...string) error
}
