package util

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]*)}`)

var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ExpandEnvStrict replaces ${NAME} references with the environment value.
// Unlike os.ExpandEnv it fails on references whose name is not a valid
// variable name and on variables that are not set, so a typo in a topology
// file surfaces at startup instead of producing an empty URL. An unterminated
// "${" is not a reference and is left as literal text.
func ExpandEnvStrict(s string) (string, error) {
	var expandErr error

	expanded := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if !envNamePattern.MatchString(name) {
			if expandErr == nil {
				expandErr = fmt.Errorf("malformed environment reference %q", match)
			}
			return match
		}
		value, ok := os.LookupEnv(name)
		if !ok {
			if expandErr == nil {
				expandErr = fmt.Errorf("environment variable %s is not set", name)
			}
			return match
		}
		return value
	})

	if expandErr != nil {
		return "", expandErr
	}
	return expanded, nil
}
