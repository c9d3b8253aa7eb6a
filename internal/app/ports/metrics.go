package ports

type IntentMetrics interface {
	RecordIntentSuccess(intent string)
	RecordIntentFailure(intent, errorKind string)
	RecordReconcile(created, updated, destroyed int)
	RecordRejected(intent string)
}
