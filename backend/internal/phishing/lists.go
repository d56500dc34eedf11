package phishing

import "regexp"

// suspiciousKeywords are tested against the whole normalized URL. Each hit
// adds to the score independently.
var suspiciousKeywords = compileKeywords(
	// authentication and account
	"login", "signin", "signup", "register", "auth",
	"verify", "validate", "confirm", "activate",
	"account", "profile", "user", "password", "reset",
	// financial
	"bank", "banking", "payment", "billing", "invoice",
	"paypal", "wallet", "card", "credit", "debit",
	"transaction", "transfer", "checkout", "pay",
	// security and updates
	"security", "secure", "update", "upgrade", "renew",
	"suspend", "locked", "blocked", "alert", "warning",
	// cryptocurrency
	"crypto", "bitcoin", "ethereum", "blockchain", "nft",
	"metamask", "binance", "coinbase", "connect", "claim",
)

var sensitivePage = regexp.MustCompile(`(?i)login|verify|account|bank|payment|checkout|signin|secure`)

var dottedQuad = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

type keywordPattern struct {
	source string
	re     *regexp.Regexp
}

func compileKeywords(words ...string) []keywordPattern {
	patterns := make([]keywordPattern, len(words))
	for i, w := range words {
		patterns[i] = keywordPattern{source: w, re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(w))}
	}
	return patterns
}

// trustedDomains short-circuit scoring when the host ends with one of them.
var trustedDomains = []string{
	// tech
	"google.com", "microsoft.com", "apple.com", "amazon.com",
	"meta.com", "facebook.com", "instagram.com", "whatsapp.com",
	// social
	"twitter.com", "x.com", "linkedin.com", "reddit.com",
	"tiktok.com", "snapchat.com", "pinterest.com", "tumblr.com",
	// developer and workplace
	"github.com", "gitlab.com", "stackoverflow.com", "medium.com",
	"dropbox.com", "box.com", "slack.com", "zoom.us", "discord.com",
	// streaming
	"netflix.com", "youtube.com", "spotify.com", "twitch.tv",
	"hulu.com", "disneyplus.com", "primevideo.com", "hbomax.com",
	// shopping
	"ebay.com", "walmart.com", "target.com", "bestbuy.com",
	"etsy.com", "shopify.com", "aliexpress.com", "alibaba.com",
	// financial
	"paypal.com", "stripe.com", "square.com", "venmo.com",
	"chase.com", "bankofamerica.com", "wellsfargo.com", "citibank.com",
	"capitalone.com", "usbank.com", "americanexpress.com", "discover.com",
	// exchanges
	"coinbase.com", "binance.com", "kraken.com", "gemini.com",
	// cloud
	"aws.amazon.com", "azure.microsoft.com", "cloud.google.com",
	"cloudflare.com", "digitalocean.com", "heroku.com", "vercel.com",
}

// brands are checked in order for typosquatting; the first hit is reported.
var brands = []string{
	"google", "microsoft", "apple", "amazon", "meta", "facebook",
	"instagram", "whatsapp", "twitter", "linkedin", "tiktok",
	"github", "gitlab", "stackoverflow", "medium", "dropbox",
	"slack", "zoom", "discord", "notion", "trello", "asana",
	"netflix", "youtube", "spotify", "twitch", "hulu", "disney",
	"hbo", "primevideo", "soundcloud", "pandora",
	"ebay", "walmart", "target", "bestbuy", "etsy", "shopify",
	"aliexpress", "alibaba", "wayfair", "overstock",
	"paypal", "stripe", "square", "venmo", "cashapp", "zelle",
	"chase", "wellsfargo", "bankofamerica", "citibank", "capitalone",
	"usbank", "americanexpress", "discover", "hsbc", "barclays",
	"coinbase", "binance", "kraken", "gemini", "metamask", "opensea",
	"uniswap", "pancakeswap", "crypto", "blockchain",
	"reddit", "pinterest", "snapchat", "telegram", "signal",
	"adobe", "salesforce", "oracle", "ibm", "intel", "nvidia",
}

var suspiciousTLDs = []string{
	// free registrations
	".tk", ".ml", ".ga", ".cf", ".gq",
	// generic
	".xyz", ".top", ".club", ".work", ".click", ".link",
	".online", ".site", ".website", ".space", ".tech",
	// downloads
	".download", ".stream", ".zip", ".mov", ".rar",
	// finance
	".loan", ".finance", ".trading", ".accountant", ".credit",
	// other
	".win", ".bid", ".review", ".party", ".trade", ".date",
	".racing", ".men", ".science", ".gdn",
}

var urlShorteners = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly",
	"is.gd", "buff.ly", "adf.ly", "bl.ink", "lnkd.in",
	"short.link", "tiny.cc", "rb.gy", "cutt.ly", "shorturl.at",
	"clck.ru", "v.gd", "trib.al", "u.to", "x.co",
	"fb.me", "youtu.be", "amzn.to", "geni.us", "spoti.fi",
}
