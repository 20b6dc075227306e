package keys

import (
	"crypto/rand"
	"strings"
)

// BrainKeyWords is the number of words of a suggested brain key.
const BrainKeyWords = 16

// SuggestBrainKey returns a BrainKey with a random phrase of BrainKeyWords
// words. Each word carries 8 bits of entropy.
func SuggestBrainKey() (*BrainKey, error) {
	var idx [BrainKeyWords]byte
	if _, err := rand.Read(idx[:]); err != nil {
		return nil, err
	}
	words := make([]string, len(idx))
	for i, n := range idx {
		words[i] = brainKeyWordList[n]
	}
	return NewBrainKey(strings.Join(words, " "), 0), nil
}

var brainKeyWordList = [256]string{
	"ABLE", "ACID", "AGED", "ALSO", "AREA", "ARMY", "AWAY", "BABY", "BACK",
	"BALL", "BAND", "BANK", "BASE", "BATH", "BEAR", "BEAT", "BEEN", "BEER",
	"BELL", "BELT", "BEST", "BILL", "BIRD", "BLOW", "BLUE", "BOAT", "BODY",
	"BOMB", "BOND", "BONE", "BOOK", "BOOM", "BORN", "BOSS", "BOTH", "BOWL",
	"BULK", "BURN", "BUSH", "BUSY", "CAKE", "CALL", "CALM", "CAME", "CAMP",
	"CARD", "CARE", "CASE", "CASH", "CAST", "CELL", "CHAT", "CHIP", "CITY",
	"CLUB", "COAL", "COAT", "CODE", "COLD", "COME", "COOK", "COOL", "COPE",
	"COPY", "CORE", "COST", "CREW", "CROP", "DARK", "DATA", "DATE", "DAWN",
	"DAYS", "DEAD", "DEAL", "DEAN", "DEAR", "DEBT", "DEEP", "DENY", "DESK",
	"DIAL", "DIET", "DISC", "DISK", "DOES", "DONE", "DOOR", "DOSE", "DOWN",
	"DRAW", "DREW", "DROP", "DRUG", "DUAL", "DUKE", "DUST", "DUTY", "EACH",
	"EARN", "EASE", "EAST", "EASY", "EDGE", "ELSE", "EVEN", "EVER", "EVIL",
	"EXIT", "FACE", "FACT", "FAIL", "FAIR", "FALL", "FARM", "FAST", "FATE",
	"FEAR", "FEED", "FEEL", "FEET", "FELL", "FELT", "FILE", "FILL", "FILM",
	"FIND", "FINE", "FIRE", "FIRM", "FISH", "FIVE", "FLAT", "FLOW", "FOOD",
	"FOOT", "FORD", "FORM", "FORT", "FOUR", "FREE", "FROM", "FUEL", "FULL",
	"FUND", "GAIN", "GAME", "GATE", "GAVE", "GEAR", "GENE", "GIFT", "GIRL",
	"GIVE", "GLAD", "GOAL", "GOES", "GOLD", "GOLF", "GONE", "GOOD", "GRAY",
	"GREW", "GREY", "GROW", "GULF", "HAIR", "HALF", "HALL", "HAND", "HANG",
	"HARD", "HARM", "HATE", "HAVE", "HEAD", "HEAR", "HEAT", "HELD", "HELL",
	"HELP", "HERE", "HERO", "HIGH", "HILL", "HIRE", "HOLD", "HOLE", "HOLY",
	"HOME", "HOPE", "HOST", "HOUR", "HUGE", "HUNG", "HUNT", "HURT", "IDEA",
	"INCH", "INTO", "IRON", "ITEM", "JACK", "JANE", "JEAN", "JOHN", "JOIN",
	"JUMP", "JURY", "JUST", "KEEN", "KEEP", "KENT", "KEPT", "KICK", "KILL",
	"KIND", "KING", "KNEE", "KNEW", "KNOW", "LACK", "LADY", "LAID", "LAKE",
	"LAND", "LANE", "LAST", "LATE", "LEAD", "LEFT", "LESS", "LIFE", "LIFT",
	"LIKE", "LINE", "LINK", "LIST", "LIVE", "LOAD", "LOAN", "LOCK", "LOGO",
	"LONG", "LOOK", "LORD", "LOSE", "LOSS", "LOST", "LOVE", "LUCK", "MADE",
	"MAIL", "MAIN", "MAKE", "MALE",
}
