// Package store implements the in-memory entity stores for users, locations
// and visits, together with the cross-entity bookkeeping that keeps visit
// records consistent with the entities they reference.
//
// Each store guards its primary map with a single reader/writer mutex.
// Mutations follow an optimistic-then-pessimistic protocol: existence is
// first checked under the read lock, the write lock is taken only when the
// operation looks like it will succeed, and the existence check is repeated
// under the write lock because the state may have changed in the gap between
// releasing the read lock and acquiring the write lock. The re-check is
// mandatory, not an optimization.
//
// Operations that need locks on more than one store always acquire them in
// the fixed global order user store, location store, visit store, and release
// them in reverse. A user or location update rewrites the denormalized
// copies on every visit referencing it before the update returns, while a
// visit create validates its references under the user and location read
// locks taken before the visit write lock. The fixed order makes those two
// paths unable to deadlock against each other.
package store
