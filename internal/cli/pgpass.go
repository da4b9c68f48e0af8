package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/jackc/pgpassfile"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// pgpassPath returns the platform-appropriate .pgpass file path.
func pgpassPath() string {
	if custom := os.Getenv("PGPASSFILE"); custom != "" {
		return custom
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "postgresql", "pgpass.conf")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pgpass")
}

// lookupPgpass returns the password of the first pgpass entry matching
// conn, or "" when there is none or the file cannot be read.
func lookupPgpass(conn *whetl.ConnectionConfig) string {
	path := pgpassPath()
	if path == "" {
		return ""
	}
	passfile, err := pgpassfile.ReadPassfile(path)
	if err != nil {
		return ""
	}
	return passfile.FindPassword(conn.Host, strconv.Itoa(conn.Port), conn.Database, conn.Username)
}
