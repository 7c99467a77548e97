package types

// Version is the sw360ctl version. Overridden at build time via -ldflags.
var Version = "0.1.0"
