package main

// companionName is the executable started when the chord fires. It is
// expected to sit in the same directory as this listener binary.
const companionName = "dn-text-normalize.exe"

// joinPath joins a base directory and an executable name with a single
// backslash. The base directory is taken verbatim; resolveDirectory already
// strips its trailing separator.
func joinPath(dir, name string) string {
	return dir + `\` + name
}

// buildCommandLine builds the command line handed to process creation: the
// full executable path in quotes (the directory may contain spaces), one
// space, then args verbatim. Args are not quoted here; whoever supplies them
// quotes them. The trailing space with empty args is harmless and kept.
func buildCommandLine(dir, exe, args string) string {
	return `"` + joinPath(dir, exe) + `" ` + args
}
