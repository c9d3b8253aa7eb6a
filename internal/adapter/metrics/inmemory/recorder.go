package inmemory

import "sync"

type Snapshot struct {
	IntentTotal     uint64            `json:"intent_total"`
	IntentSuccess   uint64            `json:"intent_success"`
	IntentFailure   uint64            `json:"intent_failure"`
	IntentRejected  uint64            `json:"intent_rejected"`
	ByIntent        map[string]uint64 `json:"by_intent"`
	ByErrorKind     map[string]uint64 `json:"by_error_kind"`
	MirrorCreated   uint64            `json:"mirror_created"`
	MirrorUpdated   uint64            `json:"mirror_updated"`
	MirrorDestroyed uint64            `json:"mirror_destroyed"`
	ReconcilePasses uint64            `json:"reconcile_passes"`
}

type Recorder struct {
	mu        sync.Mutex
	success   uint64
	failure   uint64
	rejected  uint64
	byIntent  map[string]uint64
	byKind    map[string]uint64
	created   uint64
	updated   uint64
	destroyed uint64
	passes    uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byIntent: map[string]uint64{},
		byKind:   map[string]uint64{},
	}
}

func (r *Recorder) RecordIntentSuccess(intent string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.byIntent[intent]++
}

func (r *Recorder) RecordIntentFailure(intent, errorKind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
	r.byIntent[intent]++
	r.byKind[errorKind]++
}

func (r *Recorder) RecordRejected(intent string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
	r.byIntent[intent]++
}

func (r *Recorder) RecordReconcile(created, updated, destroyed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passes++
	r.created += uint64(created)
	r.updated += uint64(updated)
	r.destroyed += uint64(destroyed)
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		IntentSuccess:   r.success,
		IntentFailure:   r.failure,
		IntentRejected:  r.rejected,
		IntentTotal:     r.success + r.failure + r.rejected,
		ByIntent:        copyCounts(r.byIntent),
		ByErrorKind:     copyCounts(r.byKind),
		MirrorCreated:   r.created,
		MirrorUpdated:   r.updated,
		MirrorDestroyed: r.destroyed,
		ReconcilePasses: r.passes,
	}
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
