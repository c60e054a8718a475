package fingerprinter

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// matchPattern reports whether the slash separated relative path name
// matches pattern. A `**` segment matches zero or more path segments,
// all other segments follow path.Match.
func matchPattern(pattern, name string) (bool, error) {
	return matchSegments(
		strings.Split(strings.Trim(pattern, "/"), "/"),
		strings.Split(name, "/"),
	)
}

func matchSegments(pattern, name []string) (bool, error) {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(name); i++ {
				ok, err := matchSegments(rest, name[i:])
				if ok || err != nil {
					return ok, err
				}
			}
			return false, nil
		}
		if len(name) == 0 {
			return false, nil
		}
		ok, err := path.Match(pattern[0], name[0])
		if err != nil {
			return false, errors.Wrapf(err, "invalid include pattern segment %q", pattern[0])
		}
		if !ok {
			return false, nil
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0, nil
}

func validatePatterns(includes []string) error {
	for _, p := range includes {
		if strings.TrimSpace(p) == "" {
			return errors.New("include pattern is empty")
		}
		for _, segment := range strings.Split(p, "/") {
			if _, err := path.Match(segment, ""); err != nil {
				return errors.Wrapf(err, "invalid include pattern %q", p)
			}
		}
	}
	return nil
}
