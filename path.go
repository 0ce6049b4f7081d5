package questsh

import (
	"fmt"
	"strings"
)

// Resolve maps raw to a canonical absolute path.
//
// A leading "~" or "$HOME" expands to env["HOME"] and any path segment that is
// exactly "$USER" expands to env["USER"]; unknown variables are kept
// literally. Relative paths are joined to cwd, which must itself be absolute.
// ".." at the root stays at the root. Existence is not checked.
func Resolve(raw, cwd string, env map[string]string) (string, error) {
	if !strings.HasPrefix(cwd, "/") {
		return "", fmt.Errorf("working directory %q is not absolute: %w", cwd, ErrInvalidArguments)
	}

	p := expandHome(raw, env)
	if !strings.HasPrefix(p, "/") {
		p = cwd + "/" + p
	}

	user, hasUser := env["USER"]
	stack := make([]string, 0, strings.Count(p, "/"))
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case "$USER", "${USER}":
			if hasUser {
				seg = user
			}
			stack = append(stack, seg)
		default:
			stack = append(stack, seg)
		}
	}
	return "/" + strings.Join(stack, "/"), nil
}

func expandHome(raw string, env map[string]string) string {
	home, ok := env["HOME"]
	if !ok {
		return raw
	}
	for _, prefix := range []string{"~", "$HOME", "${HOME}"} {
		if raw == prefix {
			return home
		}
		if strings.HasPrefix(raw, prefix+"/") {
			return home + raw[len(prefix):]
		}
	}
	return raw
}

// Base returns the last element of a canonical path, or "/" for the root.
func Base(p string) string {
	if p == "/" {
		return "/"
	}
	return p[strings.LastIndexByte(p, '/')+1:]
}

// Dir returns the parent of a canonical path. The parent of "/" is "/".
func Dir(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i <= 0 {
		return "/"
	}
	return p[:i]
}

// Join appends name to a canonical directory path.
func Join(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
