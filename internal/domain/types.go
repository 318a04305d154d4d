package domain

type (
	BoardId   = string
	BoardName = string

	ThreadId    = string
	ThreadTitle = string

	PostId      = string
	PostNumber  = int
	PostContent = string
	DisplayName = string
)

// AnonymousName is shown for posts submitted without a name.
const AnonymousName DisplayName = "名無しさん"
