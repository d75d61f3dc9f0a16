package db

import "testing"

func TestSqliteDSNForeignKeys(t *testing.T) {
	cases := []struct {
		dsn  string
		want string
	}{
		{"tracks.db", "tracks.db?_pragma=foreign_keys(1)"},
		{"tracks.db?_pragma=busy_timeout(5000)", "tracks.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"},
		{"tracks.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", "tracks.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"},
		{"tracks.db?_pragma=foreign_keys(0)", "tracks.db?_pragma=foreign_keys(0)"},
	}
	for _, c := range cases {
		if got := sqliteDSN(c.dsn); got != c.want {
			t.Errorf("sqliteDSN(%q) => %q, want %q", c.dsn, got, c.want)
		}
	}
}
