package journal

// CanWrite reports whether requester may mutate owner's journal. Only the
// owner writes; everyone else gets a read-only view. Evaluated before any
// storage mutation so a denied call never reaches the database.
func CanWrite(requesterID, ownerID uint) bool {
	return requesterID == ownerID
}

// CanRead reports whether requester may view owner's journal. No journal is
// private from other authenticated users, so this is unconditionally true;
// it exists so call sites name the policy instead of hardcoding it.
func CanRead(requesterID, ownerID uint) bool {
	return true
}
