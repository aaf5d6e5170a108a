package version

// Version is overridden at build time with -ldflags "-X botlynx/internal/version.Version=..."
var Version = "dev"
