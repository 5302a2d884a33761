package util

import "testing"

func TestKeyLayout(t *testing.T) {
	if got := DataKey("user", "u:1"); got != "data/user/u:1" {
		t.Fatalf("DataKey = %q", got)
	}
	if got := LockKey("user", "u:1"); got != "lock/user/u:1_Lock" {
		t.Fatalf("LockKey = %q", got)
	}
	if got := DataPrefix("user", "u:"); got != "data/user/u:" {
		t.Fatalf("DataPrefix = %q", got)
	}
}

func TestUserKeyRoundTrip(t *testing.T) {
	for _, k := range []string{"u:1", "a/b/c", ""} {
		if got := UserKey("ns", DataKey("ns", k)); got != k {
			t.Fatalf("UserKey(DataKey(%q)) = %q", k, got)
		}
	}
}

func TestLockAndDataKeyspacesDisjoint(t *testing.T) {
	// lock markers must never be visible under any data prefix scan
	lk := LockKey("ns", "k")
	if dp := DataPrefix("ns", ""); len(lk) >= len(dp) && lk[:len(dp)] == dp {
		t.Fatalf("lock key %q falls inside data keyspace %q", lk, dp)
	}
}
