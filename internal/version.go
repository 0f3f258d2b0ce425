package internal

// Version is the version of the recordseal executables.
const Version = "0.3.0"
