package toolkit

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external program confgen relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a program.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// Requirements lists the programs used for embedding and searching.
func Requirements(obabel, crest string) []Requirement {
	if strings.TrimSpace(obabel) == "" {
		obabel = DefaultOpenBabelCommand
	}
	if strings.TrimSpace(crest) == "" {
		crest = DefaultCrestCommand
	}
	return []Requirement{
		{Name: "Open Babel", Command: obabel, Description: "SMILES parsing, 3-D embedding, canonical SMILES"},
		{Name: "CREST", Command: crest, Description: "conformational search"},
		{Name: "xtb", Command: "xtb", Description: "energies and optimisations run by CREST"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the required programs that are not available.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
