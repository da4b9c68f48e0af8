package manager

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/whetl/internal/logging"
)

func TestDropStatements(t *testing.T) {
	got, err := dropStatements("Staging", []string{"people", "Orders"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`DROP TABLE IF EXISTS "staging"."people"`,
		`DROP TABLE IF EXISTS "staging"."orders"`,
	}, got)

	got, err = dropStatements("staging", []string{"people"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{`DROP TABLE "staging"."people"`}, got)
}

func TestDropStatements_RejectsUnsafeNames(t *testing.T) {
	_, err := dropStatements("staging", []string{"people; DROP SCHEMA x"}, true)
	assert.Error(t, err)
	_, err = dropStatements("", []string{"people"}, true)
	assert.Error(t, err)
}

func TestManager_DropTables(t *testing.T) {
	d := &dialer{}
	m := NewWithDialer(d.dial, logging.NewNullLogger())

	n, err := m.DropTables(context.Background(), "staging", []string{"a", "b"}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, d.last().execs, 2)
}

func TestManager_DropTables_StopsAtFirstFailure(t *testing.T) {
	d := &dialer{setup: func(c *fakeConn) {
		c.onExec = func(sql string) error {
			if strings.Contains(sql, `"b"`) {
				return errors.New(`table "b" does not exist`)
			}
			return nil
		}
	}}
	m := NewWithDialer(d.dial, logging.NewNullLogger(), WithAutocommit(false))

	n, err := m.DropTables(context.Background(), "staging", []string{"a", "b", "c"}, false)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, d.last().execs, 2)
	assert.True(t, d.last().tx.rolledBack)
}
