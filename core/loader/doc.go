// Package loader registers the HTTP features of the server.
//
// A Feature names itself, reports whether its dependencies are configured and mounts
// its routes:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager.LoadAll mounts the enabled features in registration order and logs the
// skipped ones, e.g. the catalog without a database.
package loader
