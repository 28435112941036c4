package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var dangerousBashPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\b`),
	regexp.MustCompile(`\brmdir\b`),
	regexp.MustCompile(`\brm\s+-rf?\b`),
	regexp.MustCompile(`\brm\s+-fr?\b`),
}

// DangerousBashCommand implements the Invoke step's built-in danger gate
// (a): it reports a confirmation prompt for any Bash command matching the
// destructive-removal pattern list.
func DangerousBashCommand(cmd string) (desc string, dangerous bool) {
	for _, p := range dangerousBashPatterns {
		if p.MatchString(cmd) {
			return fmt.Sprintf("run shell command: %s", cmd), true
		}
	}
	return "", false
}

// workingDir is overridable in tests.
var workingDir = "."

func safePath(p string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(workingDir, p))
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs(workingDir)
	if err != nil {
		return "", err
	}
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes working directory: %s", p)
	}
	return abs, nil
}

func bashDefinition() Definition {
	return Definition{
		Name:        "Bash",
		Description: "Execute a shell command and return its combined output.",
		Arguments:   []Argument{{Name: "command", Description: "the shell command to run"}},
		AskPermission: func(a Args) (string, bool) {
			return DangerousBashCommand(a["command"])
		},
		Execute: func(a Args) (string, error) {
			return runShell(a["command"])
		},
	}
}

func readDefinition() Definition {
	return Definition{
		Name:        "Read",
		Description: "Read the contents of a file.",
		Arguments:   []Argument{{Name: "path", Description: "file path"}},
		Execute: func(a Args) (string, error) {
			p, err := safePath(a["path"])
			if err != nil {
				return "", err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
	}
}

func writeDefinition() Definition {
	return Definition{
		Name:        "Write",
		Description: "Write content to a file, creating or overwriting it.",
		Arguments:   []Argument{{Name: "path", Description: "file path"}, {Name: "content", Description: "file content"}},
		Execute: func(a Args) (string, error) {
			p, err := safePath(a["path"])
			if err != nil {
				return "", err
			}
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return "", err
			}
			if err := os.WriteFile(p, []byte(a["content"]), 0o644); err != nil {
				return "", err
			}
			return fmt.Sprintf("wrote %d bytes to %s", len(a["content"]), a["path"]), nil
		},
	}
}

func editDefinition() Definition {
	return Definition{
		Name:        "Edit",
		Description: "Replace the first occurrence of old text with new text in a file.",
		Arguments: []Argument{
			{Name: "path", Description: "file path"},
			{Name: "old", Description: "text to replace"},
			{Name: "new", Description: "replacement text"},
		},
		Execute: func(a Args) (string, error) {
			p, err := safePath(a["path"])
			if err != nil {
				return "", err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return "", err
			}
			content := string(data)
			if !strings.Contains(content, a["old"]) {
				return "", fmt.Errorf("old text not found in %s", a["path"])
			}
			updated := strings.Replace(content, a["old"], a["new"], 1)
			if err := os.WriteFile(p, []byte(updated), 0o644); err != nil {
				return "", err
			}
			return fmt.Sprintf("edited %s", a["path"]), nil
		},
	}
}

func globDefinition() Definition {
	return Definition{
		Name:        "Glob",
		Description: "List files matching a glob pattern.",
		Arguments:   []Argument{{Name: "pattern", Description: "glob pattern"}},
		Execute: func(a Args) (string, error) {
			matches, err := filepath.Glob(filepath.Join(workingDir, a["pattern"]))
			if err != nil {
				return "", err
			}
			return strings.Join(matches, "\n"), nil
		},
	}
}

func grepDefinition() Definition {
	return Definition{
		Name:        "Grep",
		Description: "Search for a literal pattern in a file's lines.",
		Arguments:   []Argument{{Name: "pattern", Description: "text to search for"}, {Name: "path", Description: "file path"}},
		Execute: func(a Args) (string, error) {
			p, err := safePath(a["path"])
			if err != nil {
				return "", err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return "", err
			}
			var matches []string
			for i, line := range strings.Split(string(data), "\n") {
				if strings.Contains(line, a["pattern"]) {
					matches = append(matches, fmt.Sprintf("%d:%s", i+1, line))
				}
			}
			return strings.Join(matches, "\n"), nil
		},
	}
}

func lsDefinition() Definition {
	return Definition{
		Name:        "Ls",
		Description: "List a directory's entries.",
		Arguments:   []Argument{{Name: "path", Description: "directory path"}},
		Execute: func(a Args) (string, error) {
			p, err := safePath(a["path"])
			if err != nil {
				return "", err
			}
			entries, err := os.ReadDir(p)
			if err != nil {
				return "", err
			}
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				if e.IsDir() {
					names = append(names, e.Name()+"/")
				} else {
					names = append(names, e.Name())
				}
			}
			return strings.Join(names, "\n"), nil
		},
	}
}

// askUserDefinition and manageContextDefinition are registered only so
// ListTools shows them; the Invoke step intercepts calls to these names
// before registry lookup and these Execute funcs are never invoked.
func askUserDefinition() Definition {
	return Definition{
		Name:        "AskUser",
		Description: "Ask the user a free-form question and wait for a reply.",
		Arguments:   []Argument{{Name: "question", Description: "the question to ask"}},
		Execute: func(Args) (string, error) {
			return "", fmt.Errorf("AskUser is handled inline and should never reach the registry")
		},
	}
}

func manageContextDefinition() Definition {
	return Definition{
		Name:        "ManageContext",
		Description: "Edit conversation history via a nested pruning pass.",
		Arguments:   []Argument{{Name: "instructions", Description: "pruning instructions"}},
		Execute: func(Args) (string, error) {
			return "", fmt.Errorf("ManageContext is handled inline and should never reach the registry")
		},
	}
}

func completeTaskDefinition() Definition {
	return Definition{
		Name:        "CompleteTask",
		Description: "Declare the task finished, with a summary.",
		Arguments:   []Argument{{Name: "summary", Description: "summary of what was accomplished"}},
		Execute: func(Args) (string, error) {
			return "", fmt.Errorf("CompleteTask is handled by the parser and should never reach the registry")
		},
	}
}

func rebootDefinition() Definition {
	return Definition{
		Name:        "Reboot",
		Description: "Restart the process to pick up fresh code.",
		Arguments:   []Argument{{Name: "reason", Description: "why a reboot is needed"}},
		Execute: func(Args) (string, error) {
			return "", fmt.Errorf("Reboot is handled by the parser and should never reach the registry")
		},
	}
}

// DefaultDefinitions returns the built-in tool set installed at startup.
func DefaultDefinitions() []Definition {
	return []Definition{
		bashDefinition(),
		readDefinition(),
		writeDefinition(),
		editDefinition(),
		globDefinition(),
		grepDefinition(),
		lsDefinition(),
		askUserDefinition(),
		manageContextDefinition(),
		completeTaskDefinition(),
		rebootDefinition(),
	}
}
