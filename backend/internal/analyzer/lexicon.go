package analyzer

// Keyword sets mix English and romanized Hindi terms. Matching is by
// case-insensitive substring, so multi-word phrases match literally.
var (
	threatKeywords = []string{
		"kill", "murder", "hurt", "attack", "bomb", "shoot", "stab", "die", "burn",
		"destroy", "threat", "coming for you", "regret", "leak", "expose", "ruin",
		"destroy", "consequences", "suffer", "watch your back", "coming after",
		"maar", "marunga", "maarunga", "pel", "pelunga", "thok", "thokunga",
		"jala", "jalaa", "udaa", "barbaad", "maut", "laash", "zinda jala",
		"kaat", "faad", "blast", "bomb", "acid", "current", "bijli",
		"gangbang", "gangrape", "chudwa", "rape", "pregnant", "abortion",
		"kutte se", "horse se",
	}

	harassmentKeywords = []string{
		"stupid", "idiot", "ugly", "fat", "hate", "trash", "failure", "useless",
		"disgusting", "creepy", "worthless", "pathetic", "loser", "waste", "dumb",
		"annoying", "irritating", "embarrassing", "ashamed",
		"madarchod", "bhenchod", "bhosdike", "chutiya", "chutiye", "gandu",
		"lavde", "lodu", "harami", "haramkhor", "randi", "randwa", "bhadwa",
		"bhadwe", "kutiya", "kutte", "saala", "saale", "mkc", "bc",
		"teri maa", "teri behen", "maa ki chut", "behen ki chut", "bhosdi",
		"gand", "lund", "chut",
	}

	fraudKeywords = []string{
		"bank", "account", "password", "credit card", "transfer", "money",
		"urgent", "winner", "lottery", "otp", "verify", "kyc", "upi", "refund",
		"payment", "wallet", "crypto", "investment", "loan", "prize", "cashback",
		"paisa", "rupees", "lakh", "crore", "transfer kar", "bhej do", "bheja",
		"wapas kar", "scam", "fraud", "blackmail", "video leak", "photo leak",
		"private video", "nudes", "dark web", "viral kar",
	}
)

var (
	positiveWords = []string{"good", "great", "awesome", "nice", "happy", "love", "excellent", "best", "wonderful", "safe"}
	negativeWords = []string{"bad", "terrible", "awful", "sad", "hate", "worst", "horrible", "dangerous", "fail", "poor"}
)
