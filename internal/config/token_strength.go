package config

import zxcvbn "github.com/ccojocar/zxcvbn-go"

const weakTokenScoreThreshold = 3

// tokenUserInputs are penalized as known words when scoring a token.
var tokenUserInputs = []string{"launchview", "spacex"}

// IsWeakToken reports whether token scores below the zxcvbn threshold.
// An empty token disables auth and is not considered weak.
func IsWeakToken(token string) bool {
	if token == "" {
		return false
	}
	return zxcvbn.PasswordStrength(token, tokenUserInputs).Score < weakTokenScoreThreshold
}

// AdminTokenWarning returns the startup warning for the configured admin
// token, or "" when it is strong.
func (c *EnvConfig) AdminTokenWarning() string {
	switch {
	case c.AdminToken == "":
		return "LAUNCHVIEW_ADMIN_TOKEN is empty, API authentication is disabled"
	case IsWeakToken(c.AdminToken):
		return "LAUNCHVIEW_ADMIN_TOKEN is weak, use a long random token"
	}
	return ""
}
