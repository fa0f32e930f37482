package migration

import (
	"io/fs"
	"testing"

	"github.com/glebarez/sqlite"
	credentialdomain "github.com/smallbiznis/prepaid/internal/credential/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestApplyAutoMigratesNonPostgres(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Apply(conn, "sqlite"))
	assert.True(t, conn.Migrator().HasTable(&credentialdomain.AccessToken{}))

	// Re-applying is a no-op.
	require.NoError(t, Apply(conn, "sqlite"))
}

func TestApplyRequiresHandle(t *testing.T) {
	assert.Error(t, Apply(nil, "postgres"))
	assert.Error(t, RunMigrations(nil))
}
