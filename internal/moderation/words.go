package moderation

var defaultWords = []string{
	"arse",
	"ass",
	"asshole",
	"bastard",
	"bitch",
	"bollocks",
	"bullshit",
	"crap",
	"cunt",
	"damn",
	"dick",
	"dickhead",
	"fuck",
	"fucked",
	"fucker",
	"fucking",
	"motherfucker",
	"piss",
	"prick",
	"shit",
	"slut",
	"twat",
	"wanker",
	"whore",
}

// DefaultWords returns a copy of the built-in word list.
func DefaultWords() []string {
	return append([]string(nil), defaultWords...)
}
