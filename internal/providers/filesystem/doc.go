// Package filesystem provides sandboxed file operations for the front end.
//
// Every path goes through Sandbox.Validate before it touches the disk:
//   - relative paths are refused outright
//   - symlinks and ".." are resolved against the nearest existing ancestor
//   - the result must sit inside the home or temp directory
//   - credential directories (.ssh, .aws, ...) are refused even inside home
//
// Validation is a point-in-time check. A symlink planted between validation
// and use is not caught.
//
// Tools:
//   - filesystem.read_directory: list children, directories first
//   - filesystem.read_file: read UTF-8 text
//   - filesystem.write_file: write text, creating parents
//   - filesystem.search: doublestar glob over a fastwalk traversal
//
// Example Usage:
//
//	sandbox, _ := filesystem.NewSandbox(cfg.Sandbox.ExtraDeny)
//	fs := filesystem.NewProvider(sandbox, metrics, logger)
//	result, err := fs.Execute(ctx, "filesystem.read_file", params, nil)
package filesystem
