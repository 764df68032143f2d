package view

import (
	"errors"
	"fmt"

	"moviehouse/internal/models"
)

// Event is one user input as sent by the browser.
type Event struct {
	Action   string `json:"action"`
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty"`
	Query    string `json:"query,omitempty"`
	ItemID   int    `json:"item_id,omitempty"`
}

const (
	ActionSetCategory   = "set_category"
	ActionSetType       = "set_type"
	ActionToggleType    = "toggle_type"
	ActionQuery         = "query"
	ActionSubmit        = "submit"
	ActionClearQuery    = "clear_query"
	ActionSelect        = "select"
	ActionClosePlayback = "close_playback"
	ActionDetails       = "details"
	ActionCloseDetails  = "close_details"
	ActionRetry         = "retry"
	ActionHome          = "home"
)

var ErrUnknownAction = errors.New("unknown action")

// Apply validates an Event and queues the matching operation.
func (c *Controller) Apply(ev Event) error {
	switch ev.Action {
	case ActionSetCategory:
		cat, err := models.ParseCategory(ev.Category)
		if err != nil {
			return err
		}
		c.SetCategory(cat)
	case ActionSetType:
		t, err := models.ParseMediaType(ev.Type)
		if err != nil {
			return err
		}
		c.SetType(t)
	case ActionToggleType:
		c.ToggleType()
	case ActionQuery:
		c.OnQueryChange(ev.Query)
	case ActionSubmit:
		c.SubmitQuery()
	case ActionClearQuery:
		c.ClearQuery()
	case ActionSelect:
		if ev.ItemID <= 0 {
			return fmt.Errorf("select requires item_id")
		}
		c.SelectItemByID(ev.ItemID)
	case ActionClosePlayback:
		c.ClosePlayback()
	case ActionDetails:
		if ev.ItemID <= 0 {
			return fmt.Errorf("details requires item_id")
		}
		c.ShowDetailsByID(ev.ItemID)
	case ActionCloseDetails:
		c.CloseDetails()
	case ActionRetry:
		c.Retry()
	case ActionHome:
		c.GoHome()
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, ev.Action)
	}
	return nil
}
