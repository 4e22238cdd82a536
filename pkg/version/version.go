package version

// Version is the release version, overridden at build time with
// -ldflags "-X p1812go/pkg/version.Version=...".
var Version = "v0.3.0"
