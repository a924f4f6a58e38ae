// Package prerequisites checks that the command-line tools a template build
// shells out to are available on PATH.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// VersionArgs are passed to the tool to print its version.
	VersionArgs []string
}

// TemplateTools returns the tools a local template build needs.
func TemplateTools() []Tool {
	return []Tool{
		{
			Name:        "qm",
			Required:    true,
			Description: "Proxmox VM manager, runs create/importdisk/set/template",
		},
		{
			Name:        "openssl",
			Required:    true,
			Description: "Hashes the VM password (openssl passwd -6)",
			VersionArgs: []string{"version"},
		},
	}
}

// HashTools returns the tools needed when qm runs on a remote node and only
// password hashing happens locally.
func HashTools() []Tool {
	return TemplateTools()[1:]
}

// OptionalTools returns tools that are useful but not required.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "pvesm",
			Required:    false,
			Description: "Proxmox storage manager, useful for checking the snippets storage",
			VersionArgs: []string{"help"},
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, tool.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// LookPath resolves a binary on PATH. Tests replace it.
var LookPath = exec.LookPath

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := LookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = toolVersion(path, tool.VersionArgs)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckTemplate checks the tools for a local build.
func CheckTemplate() *CheckResults {
	return Check(TemplateTools())
}

// CheckAll checks template and optional tools.
func CheckAll() *CheckResults {
	required := TemplateTools()
	optional := OptionalTools()
	all := make([]Tool, 0, len(required)+len(optional))
	all = append(all, required...)
	all = append(all, optional...)
	return Check(all)
}

// toolVersion returns the first output line of the version command, or ""
// when the tool has no version command or it fails.
func toolVersion(path string, args []string) string {
	if len(args) == 0 {
		return ""
	}
	// #nosec G204 - path comes from LookPath on a fixed tool list
	output, err := exec.Command(path, args...).Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line)
}
