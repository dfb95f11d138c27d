package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Read-only listing endpoints stay public
	return []string{"/api/routes/version", "/graphql"}
}
