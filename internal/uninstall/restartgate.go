package uninstall

// ShouldRegister implements component H (spec §4.H). It answers: is there
// any work left besides clearing the state store itself? If no framework ID
// is persisted and every persisted task resource is already tombstoned,
// there is nothing the master needs to be told, and the scheduler should
// skip registration entirely — a higher-level teardown will clear the
// store. Any late-arriving registration in that degenerate state would
// otherwise re-create state after it was wiped (spec §9's cyclic-lifecycle
// risk).
func ShouldRegister(tasks []TaskRecord, hasFrameworkID bool) bool {
	if hasFrameworkID {
		return true
	}
	for _, t := range tasks {
		if t.OwnsUnreleasedResource() {
			return true
		}
	}
	return false
}
