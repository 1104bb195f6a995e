package schedule

import (
	"os"
	"path/filepath"
	"strings"
)

// BinDirName is the project subdirectory holding compiled helper binaries.
const BinDirName = "bin"

// Paths holds locations computed once at startup and passed to whoever
// needs them.
//
// The project root is assumed to be the working directory the tool was
// launched from.
type Paths struct {
	ProjectRoot string
	BinDir      string
	Home        string
}

// NewPaths derives Paths from a project root and a home directory.
func NewPaths(projectRoot, home string) Paths {
	root := filepath.Clean(projectRoot)
	return Paths{
		ProjectRoot: root,
		BinDir:      filepath.Join(root, BinDirName),
		Home:        filepath.Clean(home),
	}
}

// DetectPaths uses the current working directory and the user's home.
func DetectPaths() (Paths, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Paths{}, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}
	return NewPaths(cwd, home), nil
}

// ResolveCommand turns a command whose first token is a binary relative to
// BinDir into an absolute one. Absolute commands are returned as-is.
func (p Paths) ResolveCommand(rel string) string {
	rel = strings.TrimSpace(rel)
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	// Plain concatenation: rel may carry arguments that Join would clean.
	return p.BinDir + string(filepath.Separator) + rel
}

// Resolve returns a copy of s with Command resolved against BinDir.
func (p Paths) Resolve(s Schedule) Schedule {
	s.Command = p.ResolveCommand(s.Command)
	return s
}
