package version

const VERSION = "v0.3.1"
