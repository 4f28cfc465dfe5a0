package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qed-utility/portal-backend/model"
)

func TestGateDefaults(t *testing.T) {
	gate := DefaultGate()

	require.True(t, gate.Allowed([]string{model.GroupViewer}, OpViewDashboard))
	require.True(t, gate.Allowed([]string{model.GroupCircleCoordinator}, OpBulkUpload))
	require.True(t, gate.Allowed([]string{model.GroupDesignCoordinator}, OpBulkDelete))

	require.False(t, gate.Allowed([]string{model.GroupViewer}, OpBulkUpload))
	require.False(t, gate.Allowed([]string{model.GroupCircleHead}, OpBulkDelete))
	require.False(t, gate.Allowed([]string{model.GroupCircleCoordinator}, OpExport))
}

func TestGateFailClosed(t *testing.T) {
	gate := DefaultGate()

	require.False(t, gate.Allowed(nil, OpViewDashboard))
	require.False(t, gate.Allowed([]string{}, OpViewDashboard))
	require.False(t, gate.Allowed([]string{model.GroupViewer}, "no-such-operation"))
	// manage-roles ships with an empty allow-list, admin only
	require.False(t, gate.Allowed([]string{model.GroupDesignCoordinator}, OpManageRoles))
}

func TestGateAdminAlwaysAllowed(t *testing.T) {
	gate := DefaultGate()

	for _, op := range []string{
		OpViewDashboard, OpBulkUpload, OpBulkDelete, OpExport, OpProcessData, OpManageRoles,
	} {
		require.True(t, gate.Allowed([]string{model.GroupAdmin}, op), op)
	}
}

func TestLoadGateOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate.yaml")
	content := `operations:
  bulk-delete:
    - circleCoordinator
  export: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	gate, err := LoadGate(path)
	require.NoError(t, err)

	require.True(t, gate.Allowed([]string{model.GroupCircleCoordinator}, OpBulkDelete))
	require.False(t, gate.Allowed([]string{model.GroupDesignCoordinator}, OpBulkDelete))
	require.False(t, gate.Allowed([]string{model.GroupDesignCoordinator}, OpExport))
	// untouched operations keep their defaults
	require.True(t, gate.Allowed([]string{model.GroupViewer}, OpViewDashboard))
}

func TestLoadGateRejectsUnknownOperation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operations:\n  launch-rockets: [viewer]\n"), 0o600))

	_, err := LoadGate(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "launch-rockets")
}

func TestLoadGateEmptyPathUsesDefaults(t *testing.T) {
	gate, err := LoadGate("")
	require.NoError(t, err)
	require.True(t, gate.Allowed([]string{model.GroupViewer}, OpViewDashboard))
}

func TestGateConfigIsACopy(t *testing.T) {
	gate := DefaultGate()
	cfg := gate.Config()
	cfg.Operations[OpBulkDelete][0] = model.GroupViewer

	require.False(t, gate.Allowed([]string{model.GroupViewer}, OpBulkDelete))
}
