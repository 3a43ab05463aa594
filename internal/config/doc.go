// Package config defines the format-agnostic configuration model for the
// harness: the ordered settings document supplied per invocation, the app
// manifest model describing each app function's declared inputs, and the
// Loader interface for format-specific manifest loaders.
//
// The settings document itself is plain JSON and is parsed here; manifest
// loading is implemented separately (see the hcladapter package).
package config
