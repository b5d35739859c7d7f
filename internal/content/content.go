// Package content holds the built-in prompt and feedback tables.
package content

// PottyWords is the silly drill pool.
var PottyWords = []string{
	"toilet", "fart", "burp", "poop", "flush", "plunger", "stinky",
	"diaper", "noodle", "banana", "giggle", "meme", "keyboard", "wifi",
	"yeet", "cringe", "sauce", "drip", "ratio", "skibidi", "toilet-core",
}

// CleanWords is the drill pool used when potty humor is off.
var CleanWords = []string{
	"river", "planet", "galaxy", "python", "keyboard", "coffee",
	"pepper", "window", "music", "garden", "novel", "signal",
}

// SillySentences is the sprint pool.
var SillySentences = []string{
	"Skibidi toilet took my Wi-Fi and left a fart cloud.",
	"My keyboard screams YEET every time I miss a key.",
	"Burps are just mouth farts, argue with the science.",
	"Flush fear, type fierce, win snacks.",
	"I type so fast the letters need seatbelts.",
	"Coach says: posture up or the chair will file a complaint.",
	"Plungers are just wrenches for toilets.",
	"Hydrate or dydrate; also moisturize your keyboard.",
	"This sentence contains zero cringe and three giggles.",
	"When in doubt, backspace like a ninja, not a woodpecker.",
}

// CleanSentences is the sprint pool used when potty humor is off.
var CleanSentences = []string{
	"Practice makes progress, not perfection.",
	"Fast is fine, but accuracy is final.",
	"Steady hands, focused mind, smooth typing.",
	"Breathe, relax, and trust your muscle memory.",
}

// BossExtras joins the word pool in the clean boss bank.
var BossExtras = []string{
	"Practice daily and your speed will rise.",
	"Accuracy first, then speed follows.",
	"Consistency beats intensity over time.",
}

// Praise is shown after a good attempt.
var Praise = []string{
	"Cleaner than a triple flush!",
	"That was minty fresh.",
	"Keyboard go brrr.",
	"NASA called; they want their WPM back.",
	"Your accuracy slapped, respectfully.",
}

// Roasts is shown after a poor attempt.
var Roasts = []string{
	"Typos spilled everywhere. Get the plunger.",
	"That accuracy stinks. Air out those fingers.",
	"More fumbles than my phone at 3am.",
	"Keyboard crying in lowercase.",
	"Bro typed like the Wi-Fi was buffering his fingers.",
}

// Words returns the drill pool for the humor setting.
func Words(potty bool) []string {
	if potty {
		return PottyWords
	}
	return CleanWords
}

// Sentences returns the sprint pool for the humor setting.
func Sentences(potty bool) []string {
	if potty {
		return SillySentences
	}
	return CleanSentences
}

// BossBank returns a fresh copy of the boss battle bank.
func BossBank(potty bool) []string {
	extras := BossExtras
	if potty {
		extras = SillySentences
	}
	bank := make([]string, 0, len(PottyWords)+len(extras))
	bank = append(bank, PottyWords...)
	return append(bank, extras...)
}
