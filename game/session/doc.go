// Package session keeps word search sessions in memory.
//
// Each session owns its own engine.GameEngine, so two players never share a
// grid or a found-word set. Sessions are not persisted: a restart or an
// expired TTL starts players over with a fresh puzzle.
//
// Session IDs are 4 hex characters when generated, or any caller-chosen
// string of letters, digits, '-' and '_'. Lookups are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
//	// periodically
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
