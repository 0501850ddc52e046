package version

const APP_VERSION = "0.1.0"
