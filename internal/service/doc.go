// Package service provides the tool registry that fronts every provider.
//
// Tool IDs take the form "<service>.<tool>"; the registry routes on the part
// before the first dot. Both the HTTP execute endpoint and the WebSocket
// invoke frame go through Registry.Execute, which also records per-tool
// call metrics.
//
// Example Usage:
//
//	registry := service.NewRegistry(metrics, logger)
//	registry.Register(filesystemProvider)
//	result, err := registry.Execute(ctx, "filesystem.read_file", params, appCtx)
package service
