package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 视频模块错误 200xx
	ErrVideoNotFound   = 20001
	ErrUploadFailed    = 20002
	ErrInvalidCategory = 20003

	// 社交模块错误 300xx
	ErrCommentNotFound  = 30001
	ErrReplyTooDeep     = 30002
	ErrSelfSubscribe    = 30003
	ErrTweetNotFound    = 30004
	ErrPlaylistNotFound = 30005

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
