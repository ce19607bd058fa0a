// Package domain contains the core model for create-redwood-app.
//
// The domain does not depend on the filesystem, subprocesses or the network:
// infra adapters implement the ports and map their results into these types.
package domain
