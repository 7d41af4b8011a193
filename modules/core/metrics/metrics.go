package metrics

// Telemetry metric labels.
const (
	// 02-client labels

	LabelClientType = "client_type"
	LabelClientID   = "client_id"
	LabelUpdateType = "update_type"
	LabelMsgType    = "msg_type"

	// chunk store labels

	LabelSubmitter = "submitter"
)
