package database

import (
	"regexp"
	"strings"
	"testing"
)

// Columns written with NOW() must store an instant, not session-local wall time.
func TestMigrations_UseTimestampWithTimeZone(t *testing.T) {
	bare := regexp.MustCompile(`(?i)\bTIMESTAMP\b`)
	for i, m := range migrations {
		if bare.MatchString(m) {
			t.Errorf("migration %d declares TIMESTAMP without time zone:\n%s", i, m)
		}
		if strings.Contains(strings.ToUpper(m), "WITHOUT TIME ZONE") {
			t.Errorf("migration %d declares WITHOUT TIME ZONE", i)
		}
	}
}

func TestMigrations_RulesTableBeforeIndexes(t *testing.T) {
	rules, firstIndex := -1, -1
	for i, m := range migrations {
		if strings.Contains(m, "CREATE TABLE IF NOT EXISTS recommendation_rules") {
			rules = i
		}
		if firstIndex < 0 && strings.HasPrefix(m, "CREATE INDEX") {
			firstIndex = i
		}
	}
	if rules < 0 {
		t.Fatal("recommendation_rules table missing")
	}
	if firstIndex >= 0 && rules > firstIndex {
		t.Errorf("recommendation_rules created at %d, after first index at %d", rules, firstIndex)
	}
}
