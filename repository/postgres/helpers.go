package postgres

import "time"

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}

// optionalLimit maps a zero limit to SQL NULL, which Postgres treats as "no limit".
func optionalLimit(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}
