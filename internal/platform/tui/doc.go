// Package tui runs Merge Fruit in a terminal with Bubble Tea.
//
// GameModel drives one registered game at a fixed tick rate, maps keys and
// mouse input to game actions, draws the game's screen buffer with lipgloss
// and records finished games in the score store. MenuModel picks a variant,
// ScoreboardModel browses the score history, and SessionModel chains the
// three for SSH users, each of whom gets their own saved game and best score.
package tui
