// Package ui renders command lifecycle events for human review.
//
// It exposes ConsoleCommandEventLogger, an execshell.CommandEventObserver that
// logs subprocess activity through a console-formatted zap logger.
package ui
