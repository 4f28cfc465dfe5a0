package auth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/qed-utility/portal-backend/model"
)

// Operation names checked by the access gate.
const (
	OpViewDashboard = "view-dashboard"
	OpBulkUpload    = "bulk-upload"
	OpBulkDelete    = "bulk-delete"
	OpExport        = "export"
	OpProcessData   = "process-data"
	OpManageRoles   = "manage-roles"
)

// Gate maps operation names to the group names allowed to invoke them.
// It is loaded once at startup and consulted per request. Deny is
// fail-closed: unknown operations and empty memberships are always denied.
type Gate struct {
	allow map[string][]string
}

// GateConfig is the YAML override file structure.
type GateConfig struct {
	Operations map[string][]string `yaml:"operations"`
}

// DefaultGate returns the built-in allow-list, mirroring the role checks of
// the portal views: coordinators upload, the design coordinator deletes and
// exports, every role sees the dashboard.
func DefaultGate() *Gate {
	return &Gate{allow: map[string][]string{
		OpViewDashboard: {
			model.GroupCircleHead, model.GroupCircleCoordinator,
			model.GroupSurveyCoordinator, model.GroupDesignCoordinator,
			model.GroupViewer,
		},
		OpBulkUpload: {
			model.GroupCircleCoordinator, model.GroupSurveyCoordinator,
			model.GroupDesignCoordinator,
		},
		OpBulkDelete:  {model.GroupDesignCoordinator},
		OpExport:      {model.GroupDesignCoordinator},
		OpProcessData: {model.GroupDesignCoordinator},
		OpManageRoles: {},
	}}
}

// LoadGate builds the gate from a YAML file, or the defaults when path is
// empty. Operations absent from the file keep their default allow-list.
func LoadGate(path string) (*Gate, error) {
	gate := DefaultGate()
	if path == "" {
		return gate, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gate config: %w", err)
	}

	var config GateConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse gate config: %w", err)
	}

	for op, groups := range config.Operations {
		if _, known := gate.allow[op]; !known {
			return nil, fmt.Errorf("unknown operation %q in gate config", op)
		}
		gate.allow[op] = groups
	}
	return gate, nil
}

// Allowed reports whether any of the user's groups may invoke the
// operation. The admin group is always allowed.
func (g *Gate) Allowed(groups []string, operation string) bool {
	allowed, known := g.allow[operation]
	if !known {
		return false
	}
	for _, have := range groups {
		if have == model.GroupAdmin {
			return true
		}
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Config exposes the effective allow-list for the admin view.
func (g *Gate) Config() GateConfig {
	out := GateConfig{Operations: make(map[string][]string, len(g.allow))}
	for op, groups := range g.allow {
		copied := make([]string, len(groups))
		copy(copied, groups)
		out.Operations[op] = copied
	}
	return out
}
