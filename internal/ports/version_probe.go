package ports

import "context"

// VersionProbe reports the installed version of a tool (node, yarn).
type VersionProbe interface {
	Version(ctx context.Context, tool string) (string, error)
}
