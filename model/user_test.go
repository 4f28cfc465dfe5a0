package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInGroup(t *testing.T) {
	u := NewUser("asha")
	require.False(t, u.InGroup(GroupAdmin))

	u.Groups = []string{GroupViewer, GroupAdmin}
	require.True(t, u.InGroup(GroupAdmin))
	require.False(t, u.InGroup("Admin"), "group names are case sensitive")
}

func TestDefaultGroupsSeedOrder(t *testing.T) {
	groups := DefaultGroups()
	require.Len(t, groups, 6)
	require.Equal(t, GroupAdmin, groups[0].Name)
	require.Equal(t, GroupViewer, groups[5].Name)
}
