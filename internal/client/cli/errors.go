package cli

import (
	"errors"

	"github.com/dmitrijs2005/balancebuddy/internal/client/services"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

// userMessage turns an error into the line shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, services.ErrProfileNotSaved):
		return "Account created, but additional data failed to save."
	case errors.Is(err, common.ErrInsufficientCoins):
		return "Not enough coins."
	case errors.Is(err, common.ErrTaskCompleted):
		return "Completed tasks cannot be changed. Mark the task as not done first."
	case errors.Is(err, common.ErrAvatarNameEmpty):
		return "Avatar name cannot be empty."
	case errors.Is(err, common.ErrNotLoggedIn), errors.Is(err, common.ErrTokenExpired):
		return "Please log in first."
	case errors.Is(err, common.ErrNoLocalData):
		return "Backend unavailable and nothing cached yet."
	case errors.Is(err, common.ErrUnavailable):
		return "Backend unavailable, try again later."
	case errors.Is(err, common.ErrNotFound):
		return "Not found."
	}
	return "Error: " + err.Error()
}
