package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/giveabot/core/telegram/keyboard"
)

// Main menu choices shown in the started window.
const (
	MenuCreate      = "Create giveaway"
	MenuCancel      = "Cancel giveaway"
	MenuList        = "Giveaway list"
	MenuPublish     = "Publish to channel"
	MenuEnd         = "End giveaway"
	MenuShowMembers = "Show participants"
	MenuReturn      = "Return"
	MenuReroll      = "Reroll"
	MenuFinalizeEnd = "End"
)

// MainMenu builds the started-window reply keyboard.
func MainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{MenuCreate, MenuCancel},
		[]string{MenuList, MenuPublish},
		[]string{MenuEnd},
	)
}

// ListMenu builds the list-submenu keyboard.
func ListMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{MenuShowMembers, MenuReturn},
	)
}

// RerollMenu builds the reroll-or-finalize keyboard shown after a draw.
func RerollMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{MenuReroll, MenuFinalizeEnd},
	)
}
