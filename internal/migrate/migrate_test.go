package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Ordered(t *testing.T) {
	migrations, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.True(t, strings.HasSuffix(m.Name, ".sql"))
		assert.Contains(t, m.SQL, "CREATE TABLE")
	}
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("0002_create_synced_projects.sql")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = parseVersion("create.sql")
	assert.Error(t, err)
	_, err = parseVersion("x1_create.sql")
	assert.Error(t, err)
}
