package contextref

// Version is the contextref release.
const Version = "0.1.0"
