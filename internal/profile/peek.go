package profile

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/jarvest/jarvest/common"
)

// chromeEpochOffsetSeconds is the number of seconds between the Windows NT
// epoch (1601-01-01) and the Unix epoch (1970-01-01). Chromium stores cookie
// expiries as microseconds since the NT epoch.
const chromeEpochOffsetSeconds int64 = 11_644_473_600

// Peek opens a cloned cookie store read-only and returns the unencrypted
// cookies scoped to host. It is a diagnostic preflight: encrypted values
// (the common case on a live profile) are skipped, so an empty result does
// not mean the profile is logged out. The store must be a private copy,
// never the browser's live database.
func Peek(ctx context.Context, dbPath, host string) ([]common.Cookie, error) {
	dsn := "file:" + filepath.ToSlash(dbPath) + "?mode=ro&immutable=1"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open cookie store: %w", err)
	}
	defer db.Close()

	nowChrome := (time.Now().Unix() + chromeEpochOffsetSeconds) * 1_000_000
	rows, err := db.QueryContext(ctx, `
        SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly
        FROM cookies
        WHERE (host_key = ? OR host_key = ? OR host_key LIKE ?)
          AND value != ''
          AND (expires_utc = 0 OR expires_utc > ?)
        ORDER BY path DESC, name ASC
    `, host, "."+host, "%."+host, nowChrome)
	if err != nil {
		return nil, fmt.Errorf("cannot query cookie store: %w", err)
	}
	defer rows.Close()

	var out []common.Cookie
	for rows.Next() {
		var (
			name, value, hostKey, path string
			expiresUTC                 int64
			isSecure, isHTTPOnly       int
		)
		if err := rows.Scan(&name, &value, &hostKey, &path, &expiresUTC, &isSecure, &isHTTPOnly); err != nil {
			return nil, fmt.Errorf("cannot scan cookie row: %w", err)
		}
		c := common.Cookie{
			Name:     name,
			Value:    value,
			Domain:   strings.TrimPrefix(hostKey, "."),
			Path:     path,
			Secure:   isSecure == 1,
			HTTPOnly: isHTTPOnly == 1,
		}
		if expiresUTC > 0 {
			c.Expires = time.Unix(expiresUTC/1_000_000-chromeEpochOffsetSeconds, 0).UTC()
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
