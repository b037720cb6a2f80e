package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable           = "enable"
	fieldDeletedAt        = "deleted_at"
	fieldRead             = "read"
	fieldReaded           = "readed"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"
	fieldAccepted         = "accepted"
	fieldAcceptedAnswerID = "accepted_answer_id"
	fieldUnread           = "unread"
	fieldLastMessage      = "last_message"
	fieldLastSender       = "last_sender_id"
	fieldUpdatedAt        = "updated_at"
)
