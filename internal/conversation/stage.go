package conversation

// Stage is a session's position in the menu walk. Values are the wire
// strings returned by the API.
type Stage string

const (
	StageAwaitName     Stage = "ask_name"
	StageMenuPrimary   Stage = "menu_primary"
	StageMenuSecondary Stage = "menu_secondary"
	// StageShowInfo is transient: entered and left within one Handle call.
	StageShowInfo Stage = "show_info"
)

func (s Stage) String() string { return string(s) }

// Bot copy. Messages go through the engine's formatter before they are
// returned or stored.
const (
	GreetingMessage          = "Hi! I’m the Female Foundry assistant. What’s your name?"
	NameAckTemplate          = "Nice to meet you, %s! Choose what you’d like to explore:"
	PrimaryRepromptMessage   = "Pick one of the quick options so I can guide you."
	SecondaryPromptTemplate  = "Great! Let’s drill into %s. Pick a specific topic:"
	SecondaryRepromptMessage = "Choose one of the follow-up options so I can share the right highlights."
	MissingSnippetMessage    = "I don’t have that snippet yet—try another option."
	ClosingMessage           = "Anything else you'd like to explore?"
	EmptyInputMessage        = "Say something or tap one of the options."
	RecoveryMessage          = "Let’s start fresh—tap ‘Start over’."
)
