package vars

import "strings"

// StrToBool parses common spellings of a boolean. Anything
// unrecognized is false.
func StrToBool(str string) bool {
	str = strings.ToLower(str)
	switch str {
	case "true", "t", "yes", "y":
		return true
	case "false", "f", "no", "n":
		return false
	}
	return false
}
