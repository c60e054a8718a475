package fingerprinter

import (
	"testing"

	"gotest.tools/v3/assert"
)

func Test_matchPattern(t *testing.T) {
	for _, tc := range []struct {
		pattern  string
		name     string
		expected bool
	}{
		{"app.jar", "app.jar", true},
		{"app.jar", "target/app.jar", false},
		{"*.jar", "app.jar", true},
		{"*.jar", "target/app.jar", false},
		{"target/*.jar", "target/app.jar", true},
		{"**/*.jar", "app.jar", true},
		{"**/*.jar", "target/app.jar", true},
		{"**/*.jar", "a/b/c/app.jar", true},
		{"**/*.jar", "a/b/c/app.war", false},
		{"**/target/*.war", "module/target/app.war", true},
		{"**/target/*.war", "module/target/sub/app.war", false},
		{"target/**", "target/a/b.jar", true},
		{"target/**", "other/b.jar", false},
		{"**", "anything/at/all", true},
		{"/target/*.jar", "target/app.jar", true},
		{"a/**/b/*.pom", "a/b/x.pom", true},
		{"a/**/b/*.pom", "a/1/2/b/x.pom", true},
	} {
		t.Run(tc.pattern+"|"+tc.name, func(t *testing.T) {
			// EXERCISE
			result, err := matchPattern(tc.pattern, tc.name)

			// VERIFY
			assert.NilError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func Test_validatePatterns(t *testing.T) {
	assert.NilError(t, validatePatterns([]string{"**/*.jar", "target/[a-z]*.war"}))
	assert.ErrorContains(t, validatePatterns([]string{"**/*.jar", " "}), "include pattern is empty")
	assert.ErrorContains(t, validatePatterns([]string{"a/[/x"}), "invalid include pattern")
}
