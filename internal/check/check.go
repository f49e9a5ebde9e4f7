// Package check validates actual FTL contents against the declared
// expected key set, producing typed issues with source positions.
package check

import (
	"fmt"
	"os"
	"strings"

	"github.com/lus/fluent.go/fluent/parser/ast"

	"github.com/roach88/fluentctl/internal/ftl"
	"github.com/roach88/fluentctl/internal/manifest"
)

// Package validates one package's files within one locale against its
// expected keys. mainFile is the identity reported for keys missing
// from every file, including when no files exist at all. Read failures
// abort the package; everything else degrades to issues.
func Package(locale, mainFile string, files []manifest.File, expected []manifest.ExpectedKey) ([]Issue, error) {
	var issues []Issue

	actualVars := make(map[string]map[string]struct{})
	keyFile := make(map[string]string)
	sources := make(map[string]string)
	syntaxKeys := make(map[string]struct{})

	for _, file := range files {
		raw, err := os.ReadFile(file.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file.Path, err)
		}
		src := string(raw)
		sources[file.Path] = src

		res, parseErrs := ftl.Parse(src)
		for _, parseErr := range parseErrs {
			span := parseErr.Span
			issues = append(issues, Issue{
				Kind:     KindSyntaxError,
				Severity: SeverityError,
				Locale:   locale,
				File:     file.Path,
				Span:     &span,
				Help:     parseErr.Message,
			})
		}
		// Keys buried in junk are known-broken; they must not also be
		// reported as missing.
		for key := range junkKeys(res) {
			syntaxKeys[key] = struct{}{}
		}

		for key, vars := range ftl.KeyVariables(res) {
			if _, seen := actualVars[key]; !seen {
				actualVars[key] = vars
				keyFile[key] = file.Path
				continue
			}
			for v := range vars {
				actualVars[key][v] = struct{}{}
			}
		}
	}

	for _, exp := range expected {
		if _, broken := syntaxKeys[exp.Key]; broken {
			continue
		}
		vars, present := actualVars[exp.Key]
		if !present {
			issues = append(issues, Issue{
				Kind:     KindMissingKey,
				Severity: SeverityError,
				Locale:   locale,
				File:     mainFile,
				Key:      exp.Key,
				Help:     missingKeyHelp(exp, locale),
			})
			continue
		}
		for _, variable := range exp.Variables {
			if _, ok := vars[variable]; ok {
				continue
			}
			path := keyFile[exp.Key]
			issues = append(issues, Issue{
				Kind:     KindMissingVariable,
				Severity: SeverityWarning,
				Locale:   locale,
				File:     path,
				Key:      exp.Key,
				Variable: variable,
				Span:     findKeySpan(sources[path], exp.Key),
				Help:     fmt.Sprintf("value of %q does not reference {$%s}", exp.Key, variable),
			})
		}
	}

	return issues, nil
}

func missingKeyHelp(exp manifest.ExpectedKey, locale string) string {
	if exp.SourceFile != "" {
		return fmt.Sprintf("key %q declared at %s:%d is missing for locale %s",
			exp.Key, exp.SourceFile, exp.SourceLine, locale)
	}
	return fmt.Sprintf("key %q is missing for locale %s", exp.Key, locale)
}

// junkKeys extracts the leading identifier of every junk entry: the
// characters of its first non-comment line up to the first '=' or
// whitespace.
func junkKeys(res *ast.Resource) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, entry := range res.Body {
		junk, ok := entry.(*ast.Junk)
		if !ok {
			continue
		}
		for _, line := range strings.Split(junk.Content, "\n") {
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if id := leadingIdentifier(line); id != "" {
				keys[id] = struct{}{}
			}
			break
		}
	}
	return keys
}

func leadingIdentifier(line string) string {
	end := 0
	for end < len(line) && line[end] != '=' && line[end] != ' ' && line[end] != '\t' {
		end++
	}
	return line[:end]
}

// findKeySpan locates "key =" or "key=" at a line start, returning the
// byte span of the key. This is a heuristic text scan, an advisory aid
// rather than a structural lookup; it returns nil when nothing matches.
func findKeySpan(src, key string) *[2]uint {
	offset := 0
	for _, line := range strings.SplitAfter(src, "\n") {
		if strings.HasPrefix(line, key) {
			rest := line[len(key):]
			if strings.HasPrefix(rest, "=") || strings.HasPrefix(rest, " =") {
				span := [2]uint{uint(offset), uint(offset + len(key))}
				return &span
			}
		}
		offset += len(line)
	}
	return nil
}
