package lifecycle

import "database/sql"

// DB exposes the internal *sql.DB for test helpers in lifecycle_test.
// This file only compiles during `go test`.
func (s *Store) DB() *sql.DB {
	return s.db
}

// FailExecMatching makes Exec calls whose arguments contain needle fail
// with err, leaving every other call on the normal path.
func (s *Store) FailExecMatching(needle string, err error) {
	s.hooks.exec = func(db execer, query string, args ...any) (sql.Result, error) {
		for _, a := range args {
			if str, ok := a.(string); ok && str == needle {
				return nil, err
			}
		}
		return db.Exec(query, args...)
	}
}

// RestoreHooks resets any fault injection.
func (s *Store) RestoreHooks() {
	s.hooks = defaultStoreHooks()
}
