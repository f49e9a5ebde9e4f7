package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fluentctl/internal/manifest"
)

func writeLocaleFile(t *testing.T, dir, rel, content string) manifest.File {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return manifest.File{Path: path, Rel: rel}
}

func expectGreeting() []manifest.ExpectedKey {
	return []manifest.ExpectedKey{{Key: "greeting", Variables: []string{"name"}}}
}

func TestCheckCleanFile(t *testing.T) {
	dir := t.TempDir()
	file := writeLocaleFile(t, dir, "app.ftl", "greeting = Hello { $name }\n")

	issues, err := Package("en-US", file.Path, []manifest.File{file}, expectGreeting())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCheckMissingVariable(t *testing.T) {
	dir := t.TempDir()
	file := writeLocaleFile(t, dir, "app.ftl", "greeting = Hello\n")

	issues, err := Package("en-US", file.Path, []manifest.File{file}, expectGreeting())
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, KindMissingVariable, issue.Kind)
	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Equal(t, "greeting", issue.Key)
	assert.Equal(t, "name", issue.Variable)
	require.NotNil(t, issue.Span)
	assert.Equal(t, [2]uint{0, 8}, *issue.Span)
}

func TestCheckMissingKey(t *testing.T) {
	dir := t.TempDir()
	file := writeLocaleFile(t, dir, "app.ftl", "other = Something\n")

	issues, err := Package("en-US", file.Path, []manifest.File{file}, expectGreeting())
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, KindMissingKey, issue.Kind)
	assert.Equal(t, SeverityError, issue.Severity)
	assert.Equal(t, "greeting", issue.Key)
}

func TestCheckNoFilesReportsEveryKeyOnce(t *testing.T) {
	expected := []manifest.ExpectedKey{
		{Key: "greeting", Variables: []string{"name"}},
		{Key: "farewell"},
	}

	issues, err := Package("de-DE", "de-DE/app.ftl", nil, expected)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	for _, issue := range issues {
		assert.Equal(t, KindMissingKey, issue.Kind)
		assert.Equal(t, "de-DE/app.ftl", issue.File)
	}
}

func TestCheckSyntaxErrorSuppressesMissingKey(t *testing.T) {
	dir := t.TempDir()
	file := writeLocaleFile(t, dir, "app.ftl", "greeting = = broken {\n")

	issues, err := Package("en-US", file.Path, []manifest.File{file}, expectGreeting())
	require.NoError(t, err)
	require.NotEmpty(t, issues)

	for _, issue := range issues {
		assert.Equal(t, KindSyntaxError, issue.Kind, "junk key must not double-report as missing")
		require.NotNil(t, issue.Span)
	}
}

func TestCheckKeyInNamespacedFile(t *testing.T) {
	dir := t.TempDir()
	main := writeLocaleFile(t, dir, "app.ftl", "other = O\n")
	nested := writeLocaleFile(t, dir, "app/ui.ftl", "greeting = Hi { $name }\n")

	issues, err := Package("en-US", main.Path, []manifest.File{main, nested}, expectGreeting())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCheckVariableFoundInSelectVariant(t *testing.T) {
	dir := t.TempDir()
	src := "emails =\n" +
		"    { $count ->\n" +
		"        [one] One\n" +
		"       *[other] { $count } emails\n" +
		"    }\n"
	file := writeLocaleFile(t, dir, "app.ftl", src)

	expected := []manifest.ExpectedKey{{Key: "emails", Variables: []string{"count"}}}
	issues, err := Package("en-US", file.Path, []manifest.File{file}, expected)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestReportSortingAndCounts(t *testing.T) {
	issues := []Issue{
		{Kind: KindMissingVariable, Severity: SeverityWarning, File: "b.ftl", Key: "k", Variable: "z"},
		{Kind: KindMissingKey, Severity: SeverityError, File: "b.ftl", Key: "a"},
		{Kind: KindSyntaxError, Severity: SeverityError, File: "a.ftl"},
		{Kind: KindMissingVariable, Severity: SeverityWarning, File: "b.ftl", Key: "k", Variable: "a"},
	}

	report := NewReport(issues)
	assert.Equal(t, 2, report.ErrorCount)
	assert.Equal(t, 2, report.WarningCount)
	assert.False(t, report.Clean())

	assert.Equal(t, KindSyntaxError, report.Issues[0].Kind)
	assert.Equal(t, KindMissingKey, report.Issues[1].Kind)
	assert.Equal(t, "a", report.Issues[2].Variable)
	assert.Equal(t, "z", report.Issues[3].Variable)
}

func TestFindKeySpan(t *testing.T) {
	src := "# greeting in a comment\nother = O\ngreeting = Hello\n"
	span := findKeySpan(src, "greeting")
	require.NotNil(t, span)
	assert.Equal(t, "greeting", src[span[0]:span[1]])
	assert.Greater(t, span[0], uint(0))

	assert.Nil(t, findKeySpan(src, "absent"))
}
