package stitch

// Version is overridden at build time with -ldflags "-X github.com/aretw0/stitch.Version=...".
var Version = "dev"
