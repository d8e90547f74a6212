package constants

import "time"

const (
	DataFormate = "2006-01-02 15:04:05"

	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage 更大的页码按最后一页处理, offset 不会溢出
	MaxPage = 100000

	IdentityKey   = "user_id"
	JwtIDKey      = "jti"
	TokenTypeKey  = "typ"
	AccessToken   = "access"
	RefreshToken  = "refresh"
	ViewerKeyName = "viewer_key"

	ApiServiceName    = "ytgify-api"
	WorkerServiceName = "ytgify-worker"
)

const (
	PrivacyPublic   = "public"
	PrivacyUnlisted = "unlisted"
	PrivacyPrivate  = "private"
)

const (
	NotificationLike          = "like"
	NotificationComment       = "comment"
	NotificationReply         = "reply"
	NotificationFollow        = "follow"
	NotificationRemix         = "remix"
	NotificationCollectionAdd = "collection_add"
)

const (
	MaxUsernameLen    = 30
	MinUsernameLen    = 3
	MinPasswordLen    = 6
	MaxDisplayNameLen = 50
	MaxBioLen         = 500

	MaxTitleLen          = 100
	MaxDescriptionLen    = 2000
	MaxTextOverlayLen    = 200
	MaxCommentLen        = 1000
	MaxCollectionNameLen = 100
	MaxCollectionDescLen = 500

	MaxHashtagLen     = 50
	MaxHashtagsPerGif = 10
)

const (
	ViewDedupWindow  = time.Hour
	LockExpiry       = 5 * time.Second
	LikeCacheTTL     = 24 * time.Hour
	HashtagCacheTTL  = 10 * time.Minute
	ViewFlushPeriod  = time.Minute
	ConsumerPrefetch = 10
)
