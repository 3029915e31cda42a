package webpanim

// Version is the current webpanim release.
const Version = "0.3.0"
