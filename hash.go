package qom

import "github.com/cespare/xxhash/v2"

// nameTag is a fast 64-bit stand-in for a type name, used to key the
// short-term cast cache: a probe hashes the looked-up name once and
// compares the full string only against entries whose tag matches. It is
// purely an optimization: two different names never legally collide into
// the same cache slot being treated as a hit, because every cache probe
// double-checks the stored name before trusting the tag.
func nameTag(name string) uint64 {
	return xxhash.Sum64String(name)
}
