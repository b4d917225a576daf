package dynamo

// DynamoDB attribute names used in key and filter expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail            = "email"
	fieldCode             = "code"
	fieldExpiresAt        = "expires_at"
	fieldAccountID        = "account_id"
	fieldOwnerID          = "owner_id"
	fieldEmailConfirmedAt = "email_confirmed_at"
	fieldUpdatedAt        = "updated_at"
	fieldPostID           = "post_id"
	fieldIsVideo          = "is_video"
)
