package leasecache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the cache calls them on
// hot paths. Wrap with hooks/async to offload expensive sinks.
type Hooks interface {
	// A GetOrCompute caller found the recompute mutex held and is backing
	// off. attempt starts at 1 and counts retries for this call.
	LockContended(key string, attempt int)

	// Releasing the recompute mutex failed. The marker's lease still
	// bounds the lockout, but contention lasts longer than it should.
	LockReleaseFailed(key string, err error)

	// A stored value failed to decode and was deleted on read.
	SelfHeal(storageKey string, err error)

	// An unsupported or no-op operation was invoked (RemoveByPattern, Flush).
	UnsupportedOp(op string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) LockContended(string, int)       {}
func (NopHooks) LockReleaseFailed(string, error) {}
func (NopHooks) SelfHeal(string, error)          {}
func (NopHooks) UnsupportedOp(string)            {}
