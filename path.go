package main

import (
	"errors"
	"strings"
)

// rootSentinel is returned by resolveDirectory when the input contains no
// separator at all. It is not a usable directory; callers must substitute
// the process working directory or fail.
const rootSentinel = `\`

var errEmptyPath = errors.New("empty module path")

// resolveDirectory returns the directory part of fullPath, i.e. everything
// before the last path separator. Both backslash and forward slash count as
// separators, mixed within the same string included, because module paths
// observed in the wild come in both spellings.
func resolveDirectory(fullPath string) (string, error) {
	if fullPath == "" {
		return "", errEmptyPath
	}
	i := strings.LastIndexAny(fullPath, `\/`)
	if i < 0 {
		return rootSentinel, nil
	}
	return fullPath[:i], nil
}
