package chat

// Scripted assistant turns used by the tutorial flow. These are fixed literals,
// never model output.
const (
	CreateIntroScript = "Before we start, do you want to learn how to be good at prompting for building projects? Learning the ways of prompting is not only about specificity but also being organised.\n\nYou can choose to go through a tutorial with me or ignore this message and type in anything to continue."

	CreateTextFallbackScript = "Great! I'm here to help you create something amazing. Whether you want to build an app, write content, design something, or explore any creative idea - just let me know what's on your mind!\n\nWhat would you like to create today?"

	ResearchWelcomeScript = "Welcome! I'm Smart Potato. I'm here to help you dive deep into any topic you're curious about. Pick a research style below, or just type what you want to look into."

	ResearchTextFallbackScript = "No problem! Tell me what you'd like to research and we'll dig into it together."
)

// Choice chips offered alongside scripted turns.
var (
	CreateChips = []string{"Yes, teach me prompting", "No, continue normally"}

	ResearchChips = []string{
		"Academic research",
		"Market research",
		"Technical deep-dive",
		"Fact-checking",
		"Continue normally",
	}
)

// Event is the user input kind driving an onboarding transition.
type Event int

const (
	EventText Event = iota // free text typed into the input
	EventChip              // a choice chip was clicked
)

// ActionKind says how the next assistant turn is produced.
type ActionKind int

const (
	// ActionScripted appends a fixed literal assistant turn.
	ActionScripted ActionKind = iota
	// ActionOnboard calls the LLM with the onboarding preamble for (Mode, Step).
	ActionOnboard
	// ActionChat is a normal chat turn (reasoning optional).
	ActionChat
)

// Action is the decision for one user event: what to produce and the
// onboarding state to move to once the assistant turn lands.
type Action struct {
	Kind   ActionKind
	Script string     // scripted content, for ActionScripted
	Chips  []string   // chips to offer alongside a scripted turn
	Mode   Mode       // onboarding preamble selector, for ActionOnboard
	Step   int        // onboarding script step, for ActionOnboard
	Next   Onboarding // state after the assistant turn is appended
}

// Enter returns the step-0 action taken immediately when the user selects a
// mode. Build is the only mode whose opening turn comes from the LLM.
func Enter(mode Mode) Action {
	switch mode {
	case ModeCreate:
		return Action{
			Kind:   ActionScripted,
			Script: CreateIntroScript,
			Chips:  CreateChips,
			Next:   Onboarding{Mode: ModeCreate, Step: 1},
		}
	case ModeResearch:
		return Action{
			Kind:   ActionScripted,
			Script: ResearchWelcomeScript,
			Chips:  ResearchChips,
			Next:   Onboarding{Mode: ModeResearch, Step: 1},
		}
	case ModeBuild:
		return Action{
			Kind: ActionOnboard,
			Mode: ModeBuild,
			Step: 0,
			Next: Onboarding{Mode: ModeBuild, Step: 1},
		}
	default:
		return Action{Kind: ActionChat, Next: Onboarding{Mode: ModeNone}}
	}
}

// Advance returns the action for a user event in the given onboarding state.
//
// Chip-driven LLM turns transition straight to (none, 0) so the next user text
// is a normal chat turn. Typing free text while chips are expected counts as
// "continue normally": a scripted fallback is produced and the step advances.
func Advance(o Onboarding, ev Event) Action {
	if o.Done() {
		return Action{Kind: ActionChat, Next: Onboarding{Mode: ModeNone}}
	}

	switch o.Mode {
	case ModeCreate:
		switch o.Step {
		case 1:
			if ev == EventChip {
				return Action{
					Kind: ActionOnboard,
					Mode: ModeCreate,
					Step: 1,
					Next: Onboarding{Mode: ModeNone},
				}
			}
			return Action{
				Kind:   ActionScripted,
				Script: CreateTextFallbackScript,
				Next:   Onboarding{Mode: ModeCreate, Step: 2},
			}
		default:
			return Action{Kind: ActionChat, Next: Onboarding{Mode: ModeNone}}
		}

	case ModeResearch:
		switch o.Step {
		case 1:
			if ev == EventChip {
				return Action{
					Kind: ActionOnboard,
					Mode: ModeResearch,
					Step: 1,
					Next: Onboarding{Mode: ModeNone},
				}
			}
			return Action{
				Kind:   ActionScripted,
				Script: ResearchTextFallbackScript,
				Next:   Onboarding{Mode: ModeResearch, Step: 2},
			}
		default:
			return Action{Kind: ActionChat, Next: Onboarding{Mode: ModeNone}}
		}

	case ModeBuild:
		switch o.Step {
		case 1:
			return Action{
				Kind: ActionOnboard,
				Mode: ModeBuild,
				Step: 1,
				Next: Onboarding{Mode: ModeBuild, Step: 2},
			}
		case 2:
			return Action{
				Kind: ActionOnboard,
				Mode: ModeBuild,
				Step: 2,
				Next: Onboarding{Mode: ModeNone},
			}
		default:
			return Action{Kind: ActionChat, Next: Onboarding{Mode: ModeNone}}
		}
	}

	return Action{Kind: ActionChat, Next: Onboarding{Mode: ModeNone}}
}
