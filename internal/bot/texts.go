package bot

// User-facing texts for the conversation flows.
const (
	textWelcome = "Hi! I run giveaways for your channel.\n\n" +
		"Create one, publish it with a join button, and draw winners when you are ready."
	textDontUnderstand    = "I don't understand that. Try /help."
	textCancelled         = "Okay, conversation reset."
	textSomethingWrong    = "Something went wrong, please try again."
	textSendPhotoCaption  = "Send a photo with a caption to create the giveaway."
	textNeedPhoto         = "I need a photo to go with the giveaway."
	textNeedCaption       = "I need a caption to go with the photo."
	textPickCancelID      = "Send the ID of the giveaway you want to cancel."
	textPickPublishArgs   = "Send the channel name and the giveaway ID separated by a space.\nFor example: @channelname 123e4567-e89b-12d3-a456-426614174000"
	textPickDrawArgs      = "Send the giveaway ID and the number of winners separated by a space."
	textPickParticipantID = "Send the ID of the giveaway whose participants you want to see."
	textNoGiveaways       = "No active giveaways."
	textBadID             = "That doesn't look like a valid giveaway ID."
	textBadPublishArgs    = "I need a channel name and a giveaway ID."
	textBadDrawArgs       = "I need a giveaway ID and a positive number of winners."
	textUnknownID         = "No giveaway with that ID was found."
	textGiveawayCancelled = "The giveaway has been removed."
	textNoParticipants    = "This giveaway has no participants yet."
	textRerollOrEnd       = "Reroll to draw again, or End to finalize and remove the giveaway."
	textListHint          = "Press the button below for the full participant list."
	textJoinedOK          = "Congrats! You are in the giveaway!"
	textJoinedAlready     = "You are already in this giveaway!"
	textJoinGone          = "This giveaway has already ended."
	textBackToMenu        = "Back to the main menu."
	textOpenInBot         = "Open in bot"
)
