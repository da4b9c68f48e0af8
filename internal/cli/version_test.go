package cli

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBuildVars(t *testing.T, v, c, d string) {
	t.Helper()
	origV, origC, origD := version, commit, date
	t.Cleanup(func() { version, commit, date = origV, origC, origD })
	version, commit, date = v, c, d
}

func TestResolveVersionInfo_Ldflags(t *testing.T) {
	setBuildVars(t, "0.4.0", "9f1c2ab", "2026-10-01")

	v, c, d := resolveVersionInfo()
	assert.Equal(t, "0.4.0", v)
	assert.Equal(t, "9f1c2ab", c, "ldflags commit is kept as given")
	assert.Equal(t, "2026-10-01", d)
}

func TestResolveVersionInfo_DevBuild(t *testing.T) {
	setBuildVars(t, "dev", "unknown", "unknown")

	v, c, _ := resolveVersionInfo()
	assert.NotEmpty(t, v)
	assert.LessOrEqual(t, len(c), 12, "vcs revisions are shortened")
}

func TestPrintVersionInfo(t *testing.T) {
	setBuildVars(t, "0.4.0", "9f1c2ab", "2026-10-01")
	var out, errOut bytes.Buffer

	printVersionInfo(&out, &errOut)

	assert.Equal(t, "whetl 0.4.0 (9f1c2ab, 2026-10-01) "+runtime.GOOS+"/"+runtime.GOARCH+"\n", out.String())
	assert.Contains(t, errOut.String(), "Warehouse ETL helper")
}

func TestVersionCmd_WritesToCommandOutput(t *testing.T) {
	setBuildVars(t, "1.0.0", "abc", "today")
	var out, errOut bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.SetErr(&errOut)
	t.Cleanup(func() {
		versionCmd.SetOut(nil)
		versionCmd.SetErr(nil)
	})

	versionCmd.Run(versionCmd, nil)

	require.Contains(t, out.String(), "whetl 1.0.0 (abc, today)")
	assert.NotContains(t, out.String(), "Warehouse ETL helper", "banner stays off stdout")
}
