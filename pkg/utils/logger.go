package utils

import "go.uber.org/zap"

// NewLogger returns the process logger. Debug selects the development
// config (console encoding, debug level); otherwise production JSON at
// info level.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
