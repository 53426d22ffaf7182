package common

// Version is overridden at build time with -ldflags "-X .../common.Version=...".
var Version = "1.0.0"

// PackageName is used as the metrics namespace.
const PackageName = "attestation_agent"
