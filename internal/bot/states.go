package bot

import "github.com/m3rciful/giveabot/core/telegram/state"

// Conversation states for the giveaway flows. The machine is long-lived
// per chat: after most operations it cycles back to the started window
// rather than terminating.
const (
	// StateStartedWindow shows the main menu and waits for a choice.
	StateStartedWindow state.State = "started_window"
	// StateCreateGiveaway waits for a photo with a caption.
	StateCreateGiveaway state.State = "create_giveaway"
	// StateCancelGiveaway waits for the id of the giveaway to remove.
	StateCancelGiveaway state.State = "cancel_giveaway"
	// StateAddGroupID waits for "<channel> <id>" to publish.
	StateAddGroupID state.State = "add_group_id"
	// StateEndGiveaway waits for "<id> <count>" to draw winners.
	StateEndGiveaway state.State = "end_giveaway"
	// StateRerollOrEnd waits for the reroll-or-finalize choice after a draw.
	StateRerollOrEnd state.State = "reroll_or_end"
	// StateList shows the list submenu.
	StateList state.State = "list"
	// StateShowParticipants waits for the id whose participants to print.
	StateShowParticipants state.State = "show_participants"
)
