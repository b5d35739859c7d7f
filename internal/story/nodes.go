package story

import "github.com/verte-zerg/typist/internal/model"

// DefaultStart is the first chapter of the built-in story.
const DefaultStart = "start"

const (
	homeRow  = "asdfjkl;"
	ei       = homeRow + "ei"
	eiur     = ei + "ur"
	eiurty   = eiur + "ty"
	eiurtygh = eiurty + "gh"
	finale   = eiurtygh + "op"
)

// DefaultNodes returns the built-in bathroom quest.
func DefaultNodes() []model.StoryNode {
	return []model.StoryNode{
		{
			ID:          "start",
			Title:       "The Bathroom Quest Begins",
			LessonKeys:  homeRow,
			SuccessText: "You steady your stance on the home row. The stall doors creak open.",
			FailureText: "Whoops! You slipped on a mysterious puddle. A splat of goop hits your shoe.",
			Choices: []model.Choice{
				{Label: "Enter the left stall with the golden handle", Target: "stall_left"},
				{Label: "Enter the right stall with the neon sign", Target: "stall_right"},
			},
			FailureNext: "gross1",
		},
		{
			ID:          "gross1",
			Title:       "Oopsie Puddle",
			LessonKeys:  homeRow,
			SuccessText: "You wipe off the gunk and regain composure. The path splits again.",
			FailureText: "Another splash! Now there's stink on your socks. Keep at it.",
			Choices: []model.Choice{
				{Label: "Sneak into the left stall cautiously", Target: "stall_left"},
				{Label: "Boldly kick open the right stall", Target: "stall_right"},
			},
		},
		{
			ID:          "stall_left",
			Title:       "Golden Handle Stall",
			LessonKeys:  ei,
			SuccessText: "Inside, a shiny plunger rests like Excalibur. You feel stronger.",
			FailureText: "A rogue drip plops onto your sleeve. Ew. Focus up!",
			Choices: []model.Choice{
				{Label: "Claim the shiny plunger", Target: "plunger"},
				{Label: "Grab the soap of swiftness", Target: "soap"},
			},
			FailureNext: "gross2",
		},
		{
			ID:          "stall_right",
			Title:       "Neon Sign Stall",
			LessonKeys:  ei,
			SuccessText: "The neon hum syncs with your keystrokes. Confidence rises.",
			FailureText: "The neon flickers and a splatter lands nearby. Yikes!",
			Choices: []model.Choice{
				{Label: "Collect the towel of precision", Target: "towel"},
				{Label: "Don the goggles of focus", Target: "goggles"},
			},
			FailureNext: "gross2",
		},
		{
			ID:          "gross2",
			Title:       "Stinky Splash",
			LessonKeys:  ei,
			SuccessText: "You dodge the next splash. The air clears a bit. Choices await.",
			FailureText: "Ploop. Right on the shoulder. That's just rude. Try again.",
			Choices: []model.Choice{
				{Label: "Seek the plunger's power", Target: "plunger"},
				{Label: "Equip cleaning supplies", Target: "soap"},
			},
		},
		{
			ID:          "plunger",
			Title:       "Plunger of Power",
			LessonKeys:  eiur,
			SuccessText: "You wield the plunger like a knight. Pipes cheer silently.",
			FailureText: "The plunger slips, splashing a bit of mystery sauce. Gross.",
			Choices: []model.Choice{
				{Label: "Advance to the Pipe Maze", Target: "maze"},
				{Label: "Inspect the mirror for hints", Target: "mirror"},
			},
			FailureNext: "gross3",
		},
		{
			ID:          "soap",
			Title:       "Soap of Swiftness",
			LessonKeys:  eiur,
			SuccessText: "Hands glide! Your letters feel squeaky clean and speedy.",
			FailureText: "Soap slips! A sudsy blob lands on your shirt. Oof.",
			Choices: []model.Choice{
				{Label: "Dash to the Pipe Maze", Target: "maze"},
				{Label: "Study the warning poster", Target: "poster"},
			},
			FailureNext: "gross3",
		},
		{
			ID:          "towel",
			Title:       "Towel of Precision",
			LessonKeys:  eiur,
			SuccessText: "You dab away distractions. Every keystroke lands crisp.",
			FailureText: "Missed a dab! Drip marks your sleeve. Compose yourself.",
			Choices: []model.Choice{
				{Label: "Navigate the Pipe Maze", Target: "maze"},
				{Label: "Check under the sink", Target: "poster"},
			},
			FailureNext: "gross3",
		},
		{
			ID:          "goggles",
			Title:       "Goggles of Focus",
			LessonKeys:  eiur,
			SuccessText: "Tunnel vision engaged. The keys glow in your mind's eye.",
			FailureText: "Foggy lens! A drip sneaks onto your cheek. Bleh.",
			Choices: []model.Choice{
				{Label: "Enter the Pipe Maze", Target: "maze"},
				{Label: "Examine the graffiti", Target: "mirror"},
			},
			FailureNext: "gross3",
		},
		{
			ID:          "gross3",
			Title:       "Mystery Sauce",
			LessonKeys:  eiur,
			SuccessText: "You dodge the sauce this time. Forward!",
			FailureText: "Splurt. Right on the back. That's a laundry problem for later.",
			Choices: []model.Choice{
				{Label: "Brave the Pipe Maze", Target: "maze"},
				{Label: "Gather clues from the mirror", Target: "mirror"},
			},
		},
		{
			ID:          "maze",
			Title:       "Pipe Maze",
			LessonKeys:  eiurty,
			SuccessText: "You weave through valves with nimble fingers. The exit shimmers.",
			FailureText: "A pipe burps. You get a fine mist of toilet perfume. Keep going.",
			Choices: []model.Choice{
				{Label: "Exit to the Clean Throne", Target: "throne"},
				{Label: "Search a side tunnel", Target: "poster"},
			},
			FailureNext: "gross4",
		},
		{
			ID:          "mirror",
			Title:       "Mirror Messages",
			LessonKeys:  eiurty,
			SuccessText: "Hidden letters reveal a path forward. Confidence surges.",
			FailureText: "Smudge attack! A drip trails down the glass onto your hand.",
			Choices: []model.Choice{
				{Label: "Follow the letters to the Throne", Target: "throne"},
				{Label: "Take the maintenance hatch", Target: "poster"},
			},
			FailureNext: "gross4",
		},
		{
			ID:          "poster",
			Title:       "Warning Poster",
			LessonKeys:  eiurtygh,
			SuccessText: "You decode the fine print. Your technique levels up again.",
			FailureText: "Paper cut? Nope, just a ketchup-looking splat. Eww.",
			Choices: []model.Choice{
				{Label: "Final march to the Clean Throne", Target: "throne"},
			},
			FailureNext: "gross4",
		},
		{
			ID:          "gross4",
			Title:       "Puke Puddle Detour",
			LessonKeys:  eiurtygh,
			SuccessText: "You sidestep the puddle gracefully. Almost there.",
			FailureText: "You step in it. Shoes make sad squish. Power through.",
			Choices: []model.Choice{
				{Label: "Head to the Clean Throne", Target: "throne"},
			},
		},
		{
			ID:          "throne",
			Title:       "The Clean Throne",
			LessonKeys:  finale,
			SuccessText: "You claim the Clean Throne! Your typing quest shines brilliantly.",
			FailureText: "A final prank squirt. But you made it anyway.",
		},
	}
}

// Default returns the validated built-in graph.
func Default() *Graph {
	return MustGraph(DefaultStart, DefaultNodes())
}
